// Package usagestore persists which clips were selected for which
// scenes across jobs, backed by SQLite. The matcher consults it to bias
// against assets already shown to the same audience recently, and the
// history command reads it directly.
package usagestore
