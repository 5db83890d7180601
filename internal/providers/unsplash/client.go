package unsplash

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"socialstorm/internal/providers"
)

// searchResponse models the Unsplash photo search payload.
type searchResponse struct {
	Results []photoResult `json:"results"`
}

type photoResult struct {
	ID          string `json:"id"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Description string `json:"description"`
	AltDesc     string `json:"alt_description"`
	URLs        struct {
		Full    string `json:"full"`
		Regular string `json:"regular"`
	} `json:"urls"`
	Links struct {
		HTML string `json:"html"`
	} `json:"links"`
}

// Client wraps the Unsplash photo search API.
type Client struct {
	accessKey  string
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

// New creates an Unsplash client.
func New(accessKey, baseURL string, fetcher *providers.Fetcher, opts ...Option) (*Client, error) {
	accessKey = strings.TrimSpace(accessKey)
	if accessKey == "" {
		return nil, errors.New("unsplash access key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("unsplash base url required")
	}
	if fetcher == nil {
		fetcher = providers.NewFetcher(nil, "")
	}
	client := &Client{
		accessKey:  accessKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		fetcher:    fetcher,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Provider returns the photo-tier adapter backed by this client.
func (c *Client) Provider() providers.Provider { return &photoProvider{c} }

func (c *Client) search(ctx context.Context, query string) ([]photoResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search/photos")
	if err != nil {
		return nil, fmt.Errorf("parse unsplash url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "15")
	params.Set("orientation", "portrait")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Client-ID "+c.accessKey)
	req.Header.Set("Accept-Version", "v1")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unsplash search returned %d (latency=%v)", resp.StatusCode, latency)
	}
	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode unsplash response: %w", err)
	}
	return payload.Results, nil
}

type photoProvider struct{ c *Client }

func (p *photoProvider) Name() providers.Source { return providers.SourceUnsplash }

func (p *photoProvider) ServesVideo() bool { return false }

func (p *photoProvider) Search(ctx context.Context, subject string, exclude providers.Excluder) ([]providers.Hit, error) {
	results, err := p.c.search(ctx, subject)
	if err != nil {
		return nil, err
	}
	hits := make([]providers.Hit, 0, len(results))
	for _, result := range results {
		link := result.URLs.Regular
		if link == "" {
			link = result.URLs.Full
		}
		if link == "" {
			continue
		}
		title := result.Description
		if title == "" {
			title = result.AltDesc
		}
		hits = append(hits, providers.Hit{
			Provider:    providers.SourceUnsplash,
			ID:          result.ID,
			Title:       title,
			Description: result.Links.HTML,
			URL:         link,
			Width:       result.Width,
			Height:      result.Height,
			IsVideo:     false,
		})
	}
	return providers.FilterAndSort(subject, hits, exclude), nil
}

func (p *photoProvider) Download(ctx context.Context, hit providers.Hit, destDir string) (string, error) {
	name := fmt.Sprintf("unsplash_%s.jpg", hit.ID)
	return p.c.fetcher.FetchImage(ctx, hit.URL, destDir, name, nil)
}
