// Package providers defines the candidate search adapters used by the clip
// matching orchestrator and the behavior they share: provider-local ranking
// of raw hits, exclusion of already-used material, and strict post-download
// validation of fetched files.
//
// Each adapter lives in its own subpackage (library, pexels, pixabay,
// unsplash) and implements the Provider interface. Provider errors and
// timeouts are always reported as empty result sets by the orchestrator,
// never as scene failures.
package providers
