// Package main hosts the socialstorm CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into clip
// matching runs, selection history queries, and configuration scaffolding.
// It centralizes configuration resolution, dependency wiring, and structured
// logging setup so subcommands can focus on user experience instead of
// plumbing.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
