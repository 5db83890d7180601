// Package config loads, normalizes, and validates the TOML configuration for
// the clip matching engine. Defaults are backfilled before validation so a
// minimal config file (API keys only) is enough to run.
package config
