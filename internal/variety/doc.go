// Package variety keeps consecutive scenes from showing the same thing.
// The blocker reads a rolling window over the job's recent subjects and
// rewrites a repeated or generic subject into a fresh angle, via the
// language model when possible and via deterministic templates when not.
package variety
