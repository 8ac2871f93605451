// package services defines the provider interfaces and their HTTP implementations
//
// TMDB, SerpAPI, Anthropic
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	"golang.org/x/time/rate"
)

// MetadataProvider looks up movie and TV metadata.
type MetadataProvider interface {
	// SearchTitle returns the top hit for query, or nil when nothing matches.
	SearchTitle(ctx context.Context, query string, media models.MediaType) (*models.TitleMatch, error)

	// TitleDetails fetches the detail record for match.
	TitleDetails(ctx context.Context, match models.TitleMatch) (*models.TitleDetails, error)

	// SimilarTitles returns up to limit titles the provider considers similar to match.
	SimilarTitles(ctx context.Context, match models.TitleMatch, limit int) ([]string, error)

	// PosterURL expands a poster path into an absolute image URL.
	PosterURL(path string) string
}

// WebSearcher runs a web search and returns the top organic results.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
}

// LanguageModel completes a single prompt.
type LanguageModel interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// Option configures a provider client.
type Option func(*client)

// WithHTTPClient replaces the underlying [http.Client].
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) { cl.httpClient = c }
}

// WithRateLimit overrides the outbound request rate. Zero or negative disables limiting.
func WithRateLimit(rps float64) Option {
	return func(cl *client) { cl.limiter = newLimiter(rps) }
}

// client holds what every provider shares: base URL, transport and rate limiter.
type client struct {
	name       string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	header     http.Header
}

func newClient(name, baseURL string, httpCfg shared.HTTPConfig, opts ...Option) *client {
	c := &client{
		name:       name,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: httpCfg.Timeout()},
		limiter:    newLimiter(httpCfg.RequestsPerSecond),
		header:     http.Header{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// doRequest sends one request and decodes a 2xx JSON body into result.
//
// body, when non-nil, is JSON encoded. errMsg, when non-nil, extracts the provider's message
// from a non-2xx body.
func (c *client) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any, errMsg func([]byte) string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, c.name, err)
	}

	apiURL := c.baseURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s request failed: %v", shared.ErrAPIRequest, c.name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: failed to read response: %v", shared.ErrAPIRequest, c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if errMsg != nil {
			if msg := errMsg(data); msg != "" {
				return fmt.Errorf("%w: %s error (status %d): %s", shared.ErrAPIRequest, c.name, resp.StatusCode, msg)
			}
		}
		return fmt.Errorf("%w: %s error: status %d", shared.ErrAPIRequest, c.name, resp.StatusCode)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: %s: failed to decode response: %v", shared.ErrAPIRequest, c.name, err)
		}
	}

	return nil
}
