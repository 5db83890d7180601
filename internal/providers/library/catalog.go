package library

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Catalog abstracts the storage backend holding library media. Implementors
// return stable keys; the calling pipeline's storage layer resolves a key
// into bytes when the clip is actually needed.
type Catalog interface {
	ListAll(ctx context.Context) ([]string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// DirCatalog is a Catalog over a local directory tree. Keys are paths
// relative to the root, using forward slashes.
type DirCatalog struct {
	root string
}

// NewDirCatalog builds a catalog rooted at dir.
func NewDirCatalog(dir string) *DirCatalog {
	return &DirCatalog{root: dir}
}

// ListAll walks the directory and returns every media file key, sorted.
func (c *DirCatalog) ListAll(ctx context.Context) ([]string, error) {
	var keys []string
	err := filepath.WalkDir(c.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if !isMediaFile(path) {
			return nil
		}
		rel, err := filepath.Rel(c.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("library list: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}

// Get opens the file behind a key.
func (c *DirCatalog) Get(_ context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(c.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("library get %q: %w", key, err)
	}
	return file, nil
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".webm": {}, ".mkv": {}, ".m4v": {},
}

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".webp": {},
}

func isMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := videoExtensions[ext]; ok {
		return true
	}
	_, ok := imageExtensions[ext]
	return ok
}

// IsVideoKey reports whether a catalog key refers to video material.
func IsVideoKey(key string) bool {
	_, ok := videoExtensions[strings.ToLower(filepath.Ext(key))]
	return ok
}
