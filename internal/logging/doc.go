// Package logging builds the slog loggers used across the matching engine.
//
// Two output formats are supported: a compact console format for interactive
// use (colored when attached to a terminal) and JSON for log aggregation.
// Component loggers attach a standardized "component" attribute so provider,
// extractor, and orchestrator lines can be filtered apart.
package logging
