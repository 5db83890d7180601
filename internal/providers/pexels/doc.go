// Package pexels adapts the Pexels video and photo search APIs into clip
// candidate providers. One client serves both tiers; search results are
// ranked and filtered before they leave the package.
package pexels
