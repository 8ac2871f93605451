// TMDB v3 implementation of [MetadataProvider]
//
// Response types based on https://developer.themoviedb.org/reference/intro/getting-started
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	"golang.org/x/oauth2"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p/w500"
)

type tmdbGenre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TMDBSearchResult is one hit from /search/movie or /search/tv. Movies fill Title and
// ReleaseDate; series fill Name and FirstAirDate.
type TMDBSearchResult struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	Name         string `json:"name"`
	ReleaseDate  string `json:"release_date"`
	FirstAirDate string `json:"first_air_date"`
}

func (r TMDBSearchResult) displayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Name
}

func (r TMDBSearchResult) date() string {
	if r.ReleaseDate != "" {
		return r.ReleaseDate
	}
	return r.FirstAirDate
}

// TMDBPaginatedResults is the envelope of search and similar endpoints.
type TMDBPaginatedResults struct {
	Page         int                `json:"page"`
	Results      []TMDBSearchResult `json:"results"`
	TotalPages   int                `json:"total_pages"`
	TotalResults int                `json:"total_results"`
}

// TMDBDetails is the body of /movie/{id} and /tv/{id}.
type TMDBDetails struct {
	ID           int         `json:"id"`
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	Overview     string      `json:"overview"`
	VoteAverage  *float64    `json:"vote_average"`
	PosterPath   *string     `json:"poster_path"`
	Genres       []tmdbGenre `json:"genres"`
	ReleaseDate  string      `json:"release_date"`
	FirstAirDate string      `json:"first_air_date"`
}

// TMDBService implements [MetadataProvider] against the TMDB v3 API.
type TMDBService struct {
	*client
	apiKey       string
	imageBaseURL string
}

// NewTMDBService creates a TMDB client.
//
// An access token takes precedence over the v3 api key and is attached as a bearer token by
// an [oauth2] transport.
func NewTMDBService(cfg shared.TMDBConfig, httpCfg shared.HTTPConfig, opts ...Option) (*TMDBService, error) {
	if cfg.APIKey == "" && cfg.AccessToken == "" {
		return nil, fmt.Errorf("%w: tmdb api_key or access_token", shared.ErrMissingCredentials)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = tmdbBaseURL
	}
	imageBaseURL := cfg.ImageBaseURL
	if imageBaseURL == "" {
		imageBaseURL = tmdbImageBaseURL
	}

	c := newClient("tmdb", baseURL, httpCfg, opts...)
	s := &TMDBService{client: c, imageBaseURL: imageBaseURL}

	if cfg.AccessToken != "" {
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.httpClient)
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.AccessToken, TokenType: "Bearer"})
		authed := oauth2.NewClient(ctx, src)
		authed.Timeout = c.httpClient.Timeout
		c.httpClient = authed
	} else {
		s.apiKey = cfg.APIKey
	}

	return s, nil
}

func (s *TMDBService) Name() string {
	return "TMDB"
}

func (s *TMDBService) get(ctx context.Context, endpoint string, query url.Values, result any) error {
	if query == nil {
		query = url.Values{}
	}
	if s.apiKey != "" {
		query.Set("api_key", s.apiKey)
	}
	return s.doRequest(ctx, http.MethodGet, endpoint, query, nil, result, tmdbErrorMessage)
}

func tmdbErrorMessage(body []byte) string {
	var errResp struct {
		StatusMessage string `json:"status_message"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return ""
	}
	return errResp.StatusMessage
}

// SearchTitle calls /search/{movie|tv} and returns the first result.
func (s *TMDBService) SearchTitle(ctx context.Context, query string, media models.MediaType) (*models.TitleMatch, error) {
	var page TMDBPaginatedResults
	endpoint := fmt.Sprintf("/search/%s", media)
	if err := s.get(ctx, endpoint, url.Values{"query": {query}}, &page); err != nil {
		return nil, err
	}

	if len(page.Results) == 0 {
		return nil, nil
	}

	top := page.Results[0]
	return &models.TitleMatch{
		ID:          top.ID,
		Title:       top.displayTitle(),
		MediaType:   media,
		ReleaseDate: top.date(),
	}, nil
}

// TitleDetails calls /{movie|tv}/{id}.
func (s *TMDBService) TitleDetails(ctx context.Context, match models.TitleMatch) (*models.TitleDetails, error) {
	var d TMDBDetails
	endpoint := fmt.Sprintf("/%s/%d", match.MediaType, match.ID)
	if err := s.get(ctx, endpoint, nil, &d); err != nil {
		return nil, err
	}

	details := &models.TitleDetails{
		Title:       d.Title,
		Overview:    d.Overview,
		Rating:      d.VoteAverage,
		Genres:      make([]string, 0, len(d.Genres)),
		ReleaseDate: d.ReleaseDate,
	}
	if details.Title == "" {
		details.Title = d.Name
	}
	if details.ReleaseDate == "" {
		details.ReleaseDate = d.FirstAirDate
	}
	if d.PosterPath != nil {
		details.PosterPath = *d.PosterPath
	}
	for _, g := range d.Genres {
		details.Genres = append(details.Genres, g.Name)
	}

	return details, nil
}

// SimilarTitles calls /{movie|tv}/{id}/similar and keeps the first limit titles.
func (s *TMDBService) SimilarTitles(ctx context.Context, match models.TitleMatch, limit int) ([]string, error) {
	var page TMDBPaginatedResults
	endpoint := fmt.Sprintf("/%s/%d/similar", match.MediaType, match.ID)
	if err := s.get(ctx, endpoint, nil, &page); err != nil {
		return nil, err
	}

	titles := make([]string, 0, min(limit, len(page.Results)))
	for _, r := range page.Results {
		if len(titles) == limit {
			break
		}
		titles = append(titles, r.displayTitle())
	}
	return titles, nil
}

// PosterURL joins path onto the configured image base. An empty path yields "".
func (s *TMDBService) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return s.imageBaseURL + path
}
