// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"

	"github.com/desertthunder/reel/internal/models"
)

// MockMetadataProvider is a test double for services.MetadataProvider.
//
// Matches are keyed by "<media>:<query>"; a missing key means no match.
type MockMetadataProvider struct {
	Matches map[string]*models.TitleMatch
	Details map[int]*models.TitleDetails
	Similar map[int][]string
	Err     error

	mu    sync.Mutex
	Calls []string
}

// NewMockMetadataProvider returns a provider with empty lookup tables.
func NewMockMetadataProvider() *MockMetadataProvider {
	return &MockMetadataProvider{
		Matches: map[string]*models.TitleMatch{},
		Details: map[int]*models.TitleDetails{},
		Similar: map[int][]string{},
	}
}

// AddTitle registers a movie or series so lookups of query resolve to it.
func (m *MockMetadataProvider) AddTitle(query string, match models.TitleMatch, details models.TitleDetails, similar ...string) {
	m.Matches[string(match.MediaType)+":"+query] = &match
	m.Details[match.ID] = &details
	m.Similar[match.ID] = similar
}

func (m *MockMetadataProvider) record(call string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
}

func (m *MockMetadataProvider) SearchTitle(ctx context.Context, query string, media models.MediaType) (*models.TitleMatch, error) {
	m.record("search:" + string(media))
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Matches[string(media)+":"+query], nil
}

func (m *MockMetadataProvider) TitleDetails(ctx context.Context, match models.TitleMatch) (*models.TitleDetails, error) {
	m.record("details")
	if m.Err != nil {
		return nil, m.Err
	}
	if d, ok := m.Details[match.ID]; ok {
		return d, nil
	}
	return &models.TitleDetails{Title: match.Title}, nil
}

func (m *MockMetadataProvider) SimilarTitles(ctx context.Context, match models.TitleMatch, limit int) ([]string, error) {
	m.record("similar")
	if m.Err != nil {
		return nil, m.Err
	}
	similar := m.Similar[match.ID]
	if len(similar) > limit {
		similar = similar[:limit]
	}
	return similar, nil
}

func (m *MockMetadataProvider) PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return "https://image.tmdb.org/t/p/w500" + path
}

// MockWebSearcher is a test double for services.WebSearcher that records queries.
type MockWebSearcher struct {
	Results []models.SearchResult
	Err     error

	mu      sync.Mutex
	Queries []string
}

func (m *MockWebSearcher) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	m.mu.Lock()
	m.Queries = append(m.Queries, query)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	return m.Results, nil
}

// MockLanguageModel is a test double for services.LanguageModel that records every request.
//
// Replies are returned in order; once exhausted, Reply is returned.
type MockLanguageModel struct {
	Reply   string
	Replies []string
	Err     error

	mu       sync.Mutex
	Requests []models.CompletionRequest
}

func (m *MockLanguageModel) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) > 0 {
		reply := m.Replies[0]
		m.Replies = m.Replies[1:]
		return reply, nil
	}
	return m.Reply, nil
}

// CallCount returns how many completions were requested.
func (m *MockLanguageModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

// LastPrompt returns the most recent prompt, or "" when none was sent.
func (m *MockLanguageModel) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Requests) == 0 {
		return ""
	}
	return m.Requests[len(m.Requests)-1].Prompt
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites int, target io.Writer) *LimitedWriter {
	return &LimitedWriter{maxWrites: maxWrites, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
