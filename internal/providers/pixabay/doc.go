// Package pixabay adapts the Pixabay video and image APIs into clip
// candidate providers.
package pixabay
