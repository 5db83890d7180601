package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"socialstorm/internal/media/ffprobe"
)

// Minimum accepted sizes for downloaded material. Anything smaller is a
// broken download or an error page saved as a file.
const (
	MinImageBytes = 2 << 10   // 2 KiB
	MinVideoBytes = 256 << 10 // 256 KiB
)

// Fetcher downloads provider hits and validates the resulting files.
type Fetcher struct {
	httpClient    *http.Client
	ffprobeBinary string
}

// NewFetcher builds a Fetcher. An empty ffprobeBinary defaults to "ffprobe".
func NewFetcher(client *http.Client, ffprobeBinary string) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Fetcher{httpClient: client, ffprobeBinary: ffprobeBinary}
}

// FetchVideo downloads url into destDir and validates size and container:
// the file must be at least MinVideoBytes and carry a real video stream.
func (f *Fetcher) FetchVideo(ctx context.Context, url, destDir, name string, headers map[string]string) (string, error) {
	path, err := f.fetch(ctx, url, destDir, name, headers, MinVideoBytes)
	if err != nil {
		return "", err
	}
	result, err := ffprobe.Inspect(ctx, f.ffprobeBinary, path)
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("validate video: %w", err)
	}
	if !result.HasVideoStream() {
		_ = os.Remove(path)
		return "", errors.New("validate video: no video stream in container")
	}
	return path, nil
}

// FetchImage downloads url into destDir and validates the minimum size.
func (f *Fetcher) FetchImage(ctx context.Context, url, destDir, name string, headers map[string]string) (string, error) {
	return f.fetch(ctx, url, destDir, name, headers, MinImageBytes)
}

func (f *Fetcher) fetch(ctx context.Context, url, destDir, name string, headers map[string]string, minBytes int64) (string, error) {
	if strings.TrimSpace(url) == "" {
		return "", errors.New("fetch: empty url")
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("fetch: ensure dest dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch: build request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: execute request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch: http %d for %s", resp.StatusCode, url)
	}

	dest := filepath.Join(destDir, name)
	file, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("fetch: create file: %w", err)
	}
	written, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("fetch: write body: %w", copyErr)
	}
	if closeErr != nil {
		_ = os.Remove(dest)
		return "", fmt.Errorf("fetch: close file: %w", closeErr)
	}
	if written < minBytes {
		_ = os.Remove(dest)
		return "", fmt.Errorf("fetch: file too small (%d bytes, need %d)", written, minBytes)
	}
	return dest, nil
}
