package pixabay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"socialstorm/internal/providers"
)

// videoResponse models the Pixabay video search payload.
type videoResponse struct {
	Hits []videoResult `json:"hits"`
}

type videoResult struct {
	ID       int64   `json:"id"`
	Tags     string  `json:"tags"`
	Duration float64 `json:"duration"`
	Videos   struct {
		Large  videoFile `json:"large"`
		Medium videoFile `json:"medium"`
		Small  videoFile `json:"small"`
	} `json:"videos"`
}

type videoFile struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// photoResponse models the Pixabay image search payload.
type photoResponse struct {
	Hits []photoResult `json:"hits"`
}

type photoResult struct {
	ID          int64  `json:"id"`
	Tags        string `json:"tags"`
	LargeImage  string `json:"largeImageURL"`
	ImageWidth  int    `json:"imageWidth"`
	ImageHeight int    `json:"imageHeight"`
}

// Client wraps the Pixabay API. Pixabay authenticates via a key query
// parameter rather than a header.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	fetcher    *providers.Fetcher
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a Pixabay client.
func New(apiKey, baseURL string, fetcher *providers.Fetcher, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("pixabay api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("pixabay base url required")
	}
	if fetcher == nil {
		fetcher = providers.NewFetcher(nil, "")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		fetcher:    fetcher,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// VideoProvider returns the video-tier adapter backed by this client.
func (c *Client) VideoProvider() providers.Provider { return &videoProvider{c} }

// PhotoProvider returns the photo-tier adapter backed by this client.
func (c *Client) PhotoProvider() providers.Provider { return &photoProvider{c} }

func (c *Client) get(ctx context.Context, subPath, query string, extra url.Values, target any) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + subPath)
	if err != nil {
		return fmt.Errorf("parse pixabay url: %w", err)
	}
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", query)
	params.Set("per_page", "15")
	params.Set("safesearch", "true")
	for key, values := range extra {
		for _, value := range values {
			params.Add(key, value)
		}
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pixabay search returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode pixabay response: %w", err)
	}
	return nil
}

func bestRendition(result videoResult) videoFile {
	for _, file := range []videoFile{result.Videos.Large, result.Videos.Medium, result.Videos.Small} {
		if file.URL != "" {
			return file
		}
	}
	return videoFile{}
}

func splitTags(tags string) []string {
	parts := strings.Split(tags, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			cleaned = append(cleaned, part)
		}
	}
	return cleaned
}

type videoProvider struct{ c *Client }

func (p *videoProvider) Name() providers.Source { return providers.SourcePixabayVideo }

func (p *videoProvider) ServesVideo() bool { return true }

func (p *videoProvider) Search(ctx context.Context, subject string, exclude providers.Excluder) ([]providers.Hit, error) {
	var payload videoResponse
	if err := p.c.get(ctx, "/videos/", subject, nil, &payload); err != nil {
		return nil, err
	}
	hits := make([]providers.Hit, 0, len(payload.Hits))
	for _, result := range payload.Hits {
		file := bestRendition(result)
		if file.URL == "" {
			continue
		}
		hits = append(hits, providers.Hit{
			Provider:    providers.SourcePixabayVideo,
			ID:          strconv.FormatInt(result.ID, 10),
			Tags:        splitTags(result.Tags),
			URL:         file.URL,
			Width:       file.Width,
			Height:      file.Height,
			DurationSec: result.Duration,
			IsVideo:     true,
		})
	}
	return providers.FilterAndSort(subject, hits, exclude), nil
}

func (p *videoProvider) Download(ctx context.Context, hit providers.Hit, destDir string) (string, error) {
	name := fmt.Sprintf("pixabay_%s.mp4", hit.ID)
	return p.c.fetcher.FetchVideo(ctx, hit.URL, destDir, name, nil)
}

type photoProvider struct{ c *Client }

func (p *photoProvider) Name() providers.Source { return providers.SourcePixabayPhoto }

func (p *photoProvider) ServesVideo() bool { return false }

func (p *photoProvider) Search(ctx context.Context, subject string, exclude providers.Excluder) ([]providers.Hit, error) {
	extra := url.Values{}
	extra.Set("image_type", "photo")
	extra.Set("orientation", "vertical")
	var payload photoResponse
	if err := p.c.get(ctx, "/", subject, extra, &payload); err != nil {
		return nil, err
	}
	hits := make([]providers.Hit, 0, len(payload.Hits))
	for _, result := range payload.Hits {
		if result.LargeImage == "" {
			continue
		}
		hits = append(hits, providers.Hit{
			Provider: providers.SourcePixabayPhoto,
			ID:       strconv.FormatInt(result.ID, 10),
			Tags:     splitTags(result.Tags),
			URL:      result.LargeImage,
			Width:    result.ImageWidth,
			Height:   result.ImageHeight,
			IsVideo:  false,
		})
	}
	return providers.FilterAndSort(subject, hits, exclude), nil
}

func (p *photoProvider) Download(ctx context.Context, hit providers.Hit, destDir string) (string, error) {
	name := fmt.Sprintf("pixabay_%s.jpg", hit.ID)
	return p.c.fetcher.FetchImage(ctx, hit.URL, destDir, name, nil)
}
