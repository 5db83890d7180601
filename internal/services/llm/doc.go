// Package llm wraps an OpenRouter-compatible chat completion API.
//
// The matcher uses it for subject extraction, metaphor literalization,
// question-to-visual conversion, query reformulation, and repetition
// breaking. Empty model output is reported as a no-result, never an error,
// so callers can fall through to rule-based strategies.
package llm
