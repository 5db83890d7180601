// Package synth turns a still image into a short portrait video clip.
// The primary path applies a slow Ken Burns pan whose direction is
// derived deterministically from the file name; if that render fails, a
// static centered crop is produced instead. Only a failure of the
// static fallback surfaces to the caller.
package synth
