// Package imagesearch looks up stock photos for slide illustrations.
package imagesearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultBaseURL is the Pexels API root.
const DefaultBaseURL = "https://api.pexels.com/v1"

// DefaultTimeout bounds every search and download call.
const DefaultTimeout = 10 * time.Second

// maxImageBytes caps a downloaded photo.
const maxImageBytes = 20 << 20

// ErrNoResults is returned when a query matches no photo.
var ErrNoResults = errors.New("no photo found")

// Photo is a downloaded image ready for decoding.
type Photo struct {
	ID           int64
	Photographer string
	SourceURL    string
	ContentType  string
	Data         []byte
}

// Searcher finds and downloads one photo for a query.
type Searcher interface {
	Search(ctx context.Context, query string) (*Photo, error)
}

// Options configures a Pexels client.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to the Pexels search API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// New returns a Pexels searcher, or nil when no API key is configured.
func New(opts Options) Searcher {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil
	}
	return NewClient(opts)
}

// NewClient returns a Pexels client for opts.
func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
	}
}

type searchResponse struct {
	Photos []struct {
		ID           int64  `json:"id"`
		Photographer string `json:"photographer"`
		Src          struct {
			Large    string `json:"large"`
			Original string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

// Search returns the first landscape photo for query.
func (c *Client) Search(ctx context.Context, query string) (*Photo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("image query is required")
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", "1")
	params.Set("orientation", "landscape")

	body, _, err := c.get(ctx, c.baseURL+"/search?"+params.Encode(), true, 1<<20)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}

	var decoded searchResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("pexels search: decode response: %w", err)
	}
	if len(decoded.Photos) == 0 {
		return nil, ErrNoResults
	}

	first := decoded.Photos[0]
	source := first.Src.Large
	if source == "" {
		source = first.Src.Original
	}
	if source == "" {
		return nil, ErrNoResults
	}

	data, contentType, err := c.get(ctx, source, false, maxImageBytes)
	if err != nil {
		return nil, fmt.Errorf("pexels download: %w", err)
	}

	return &Photo{
		ID:           first.ID,
		Photographer: first.Photographer,
		SourceURL:    source,
		ContentType:  contentType,
		Data:         data,
	}, nil
}

func (c *Client) get(ctx context.Context, target string, authorize bool, limit int64) ([]byte, string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", err
	}
	if authorize {
		req.Header.Set("Authorization", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", fmt.Errorf("status %d", resp.StatusCode)
	}
	return data, resp.Header.Get("Content-Type"), nil
}
