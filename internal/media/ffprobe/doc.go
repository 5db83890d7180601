// Package ffprobe inspects downloaded clips so the matcher can reject files
// that are not playable video before offering them to the compositor.
package ffprobe
