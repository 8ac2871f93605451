// SerpAPI implementation of [WebSearcher]
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

const (
	serpAPIBaseURL    = "https://serpapi.com"
	serpAPINumResults = 5
)

// SerpAPIOrganicResult is one entry of organic_results.
type SerpAPIOrganicResult struct {
	Position int    `json:"position"`
	Title    string `json:"title"`
	Link     string `json:"link"`
	Snippet  string `json:"snippet"`
}

// SerpAPIResponse is the subset of /search.json this client reads.
type SerpAPIResponse struct {
	OrganicResults []SerpAPIOrganicResult `json:"organic_results"`
	Error          string                 `json:"error"`
}

// SerpAPIService implements [WebSearcher] with the SerpAPI Google engine.
type SerpAPIService struct {
	*client
	apiKey     string
	numResults int
}

// NewSerpAPIService creates a SerpAPI client.
func NewSerpAPIService(cfg shared.SerpAPIConfig, httpCfg shared.HTTPConfig, opts ...Option) (*SerpAPIService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: serpapi api_key", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = serpAPIBaseURL
	}
	num := cfg.NumResults
	if num <= 0 {
		num = serpAPINumResults
	}

	return &SerpAPIService{
		client:     newClient("serpapi", baseURL, httpCfg, opts...),
		apiKey:     cfg.APIKey,
		numResults: num,
	}, nil
}

func (s *SerpAPIService) Name() string {
	return "SerpAPI"
}

// Search returns at most the configured number of organic results for query.
func (s *SerpAPIService) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	params := url.Values{
		"engine":  {"google"},
		"q":       {query},
		"api_key": {s.apiKey},
		"num":     {strconv.Itoa(s.numResults)},
	}

	var resp SerpAPIResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search.json", params, nil, &resp, serpAPIErrorMessage); err != nil {
		return nil, err
	}

	// A 200 carrying "error" (Google returned nothing) decodes to no organic results.
	results := make([]models.SearchResult, 0, min(s.numResults, len(resp.OrganicResults)))
	for _, r := range resp.OrganicResults {
		if len(results) == s.numResults {
			break
		}
		results = append(results, models.SearchResult{Title: r.Title, Link: r.Link, Snippet: r.Snippet})
	}
	return results, nil
}

func serpAPIErrorMessage(body []byte) string {
	var resp SerpAPIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return ""
	}
	return resp.Error
}
