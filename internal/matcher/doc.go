// Package matcher resolves one scene of a short-form video to one
// usable clip. It fans the scene's subject out across extraction
// strategies, queries every provider in a video tier and a conditional
// photo tier, scores and filters candidates with a unified scorer, and
// walks a deterministic fallback chain ending in image-to-video
// synthesis and, past that, any unused library asset.
package matcher
