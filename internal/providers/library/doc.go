// Package library serves clips from the internal media catalog. Matching
// runs in three tiers of decreasing strictness: exact token, all major
// words, then any major word. The full listing also backs the
// orchestrator's absolute last-resort fallback.
package library
