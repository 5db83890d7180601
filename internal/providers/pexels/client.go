package pexels

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"socialstorm/internal/providers"
)

// videoResponse models the Pexels video search payload.
type videoResponse struct {
	Videos []videoResult `json:"videos"`
}

type videoResult struct {
	ID       int64   `json:"id"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Duration float64 `json:"duration"`
	URL      string  `json:"url"`
	Files    []struct {
		Link    string `json:"link"`
		Width   int    `json:"width"`
		Height  int    `json:"height"`
		Quality string `json:"quality"`
	} `json:"video_files"`
}

// photoResponse models the Pexels photo search payload.
type photoResponse struct {
	Photos []photoResult `json:"photos"`
}

type photoResult struct {
	ID     int64  `json:"id"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Src    struct {
		Original string `json:"original"`
		Large2x  string `json:"large2x"`
	} `json:"src"`
}

// Client wraps the Pexels API for both video and photo search.
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

// New creates a Pexels client.
func New(apiKey, baseURL string, fetcher *providers.Fetcher, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("pexels api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("pexels base url required")
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

func (c *Client) searchVideos(ctx context.Context, query string) ([]videoResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/videos/search")
	if err != nil {
		return nil, fmt.Errorf("parse pexels url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "15")
	params.Set("orientation", "portrait")
	endpoint.RawQuery = params.Encode()

	var payload videoResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Videos, nil
}

func (c *Client) searchPhotos(ctx context.Context, query string) ([]photoResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/v1/search")
	if err != nil {
		return nil, fmt.Errorf("parse pexels url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "15")
	params.Set("orientation", "portrait")
	endpoint.RawQuery = params.Encode()

	var payload photoResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	return payload.Photos, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pexels search returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode pexels response: %w", err)
	}
	return nil
}

// titleFromPageURL recovers a readable title from the Pexels page slug,
// e.g. ".../video/mountain-gorilla-eating-12345/" -> "mountain gorilla eating".
func titleFromPageURL(pageURL string) string {
	trimmed := strings.TrimRight(pageURL, "/")
	slug := path.Base(trimmed)
	if idx := strings.LastIndex(slug, "-"); idx > 0 {
		if _, err := strconv.ParseInt(slug[idx+1:], 10, 64); err == nil {
			slug = slug[:idx]
		}
	}
	return strings.ReplaceAll(slug, "-", " ")
}

func bestVideoFile(result videoResult) (link string, width, height int) {
	for _, file := range result.Files {
		if file.Link == "" {
			continue
		}
		// Tallest rendition wins for 9:16 delivery.
		if file.Height > height {
			link, width, height = file.Link, file.Width, file.Height
		}
	}
	return link, width, height
}

type videoProvider struct{ c *Client }

func (p *videoProvider) Name() providers.Source { return providers.SourcePexelsVideo }

func (p *videoProvider) ServesVideo() bool { return true }

func (p *videoProvider) Search(ctx context.Context, subject string, exclude providers.Excluder) ([]providers.Hit, error) {
	results, err := p.c.searchVideos(ctx, subject)
	if err != nil {
		return nil, err
	}
	hits := make([]providers.Hit, 0, len(results))
	for _, result := range results {
		link, width, height := bestVideoFile(result)
		if link == "" {
			continue
		}
		if width == 0 {
			width, height = result.Width, result.Height
		}
		hits = append(hits, providers.Hit{
			Provider:    providers.SourcePexelsVideo,
			ID:          strconv.FormatInt(result.ID, 10),
			Title:       titleFromPageURL(result.URL),
			URL:         link,
			Width:       width,
			Height:      height,
			DurationSec: result.Duration,
			IsVideo:     true,
		})
	}
	return providers.FilterAndSort(subject, hits, exclude), nil
}

func (p *videoProvider) Download(ctx context.Context, hit providers.Hit, destDir string) (string, error) {
	name := fmt.Sprintf("pexels_%s.mp4", hit.ID)
	return p.c.fetcher.FetchVideo(ctx, hit.URL, destDir, name, nil)
}

type photoProvider struct{ c *Client }

func (p *photoProvider) Name() providers.Source { return providers.SourcePexelsPhoto }

func (p *photoProvider) ServesVideo() bool { return false }

func (p *photoProvider) Search(ctx context.Context, subject string, exclude providers.Excluder) ([]providers.Hit, error) {
	results, err := p.c.searchPhotos(ctx, subject)
	if err != nil {
		return nil, err
	}
	hits := make([]providers.Hit, 0, len(results))
	for _, result := range results {
		link := result.Src.Large2x
		if link == "" {
			link = result.Src.Original
		}
		if link == "" {
			continue
		}
		hits = append(hits, providers.Hit{
			Provider:    providers.SourcePexelsPhoto,
			ID:          strconv.FormatInt(result.ID, 10),
			Title:       result.Alt,
			Description: titleFromPageURL(result.URL),
			URL:         link,
			Width:       result.Width,
			Height:      result.Height,
			IsVideo:     false,
		})
	}
	return providers.FilterAndSort(subject, hits, exclude), nil
}

func (p *photoProvider) Download(ctx context.Context, hit providers.Hit, destDir string) (string, error) {
	name := fmt.Sprintf("pexels_%s.jpg", hit.ID)
	return p.c.fetcher.FetchImage(ctx, hit.URL, destDir, name, nil)
}
