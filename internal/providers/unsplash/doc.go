// Package unsplash adapts the Unsplash photo search API into a clip
// candidate provider. Unsplash serves photos only, so its hits always
// flow through the image fallback path.
package unsplash
