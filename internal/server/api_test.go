package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/repositories"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
	tu "github.com/desertthunder/reel/internal/testing"
)

type apiFixture struct {
	server *httptest.Server
}

// setupAPI serves the API over an in-memory database. A nil model replies "Max, Netflix".
func setupAPI(t *testing.T, model *tu.MockLanguageModel) *apiFixture {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	rating := 8.0
	meta := tu.NewMockMetadataProvider()
	meta.AddTitle("Dune",
		models.TitleMatch{ID: 438631, Title: "Dune", MediaType: models.MediaMovie},
		models.TitleDetails{Title: "Dune", Overview: "Spice.", Rating: &rating},
	)
	search := &tu.MockWebSearcher{Results: []models.SearchResult{{Snippet: "On Max."}}}
	if model == nil {
		model = &tu.MockLanguageModel{Reply: "Max, Netflix"}
	}

	watchlist := repositories.NewWatchlistRepository(db)
	pipeline := tasks.NewPipeline(meta, search, model, watchlist, nil)
	controller := session.NewController(repositories.NewUserRepository(db), watchlist, pipeline, nil)

	logger := shared.NewLogger(io.Discard)
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	sessions := session.NewRegistry(time.Hour)
	router.Handle(http.MethodGet, "/health", Health(sessions))
	router.Handler(NewAPIHandler(controller, sessions, logger))

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiFixture{server: server}
}

func (f *apiFixture) do(t *testing.T, method, path, sessionID string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (f *apiFixture) loginAs(t *testing.T, user, password string) string {
	t.Helper()

	f.do(t, http.MethodPost, "/api/signup", "", credentialsRequest{Username: user, Password: password})
	resp := f.do(t, http.MethodPost, "/api/login", "", credentialsRequest{Username: user, Password: password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}

	var body loginResponse
	decodeBody(t, resp, &body)
	return body.SessionID
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func TestAPI(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		f := setupAPI(t, nil)
		f.loginAs(t, "alice", "pw1")

		resp := f.do(t, http.MethodGet, "/health", "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Errorf("expected 200, got %d", resp.StatusCode)
		}
		var body struct {
			Status   string `json:"status"`
			Sessions int    `json:"sessions"`
		}
		decodeBody(t, resp, &body)
		if body.Status != "ok" || body.Sessions != 1 {
			t.Errorf("unexpected health body %+v", body)
		}
	})

	t.Run("signup twice conflicts", func(t *testing.T) {
		f := setupAPI(t, nil)
		creds := credentialsRequest{Username: "alice", Password: "pw1"}

		if resp := f.do(t, http.MethodPost, "/api/signup", "", creds); resp.StatusCode != http.StatusCreated {
			t.Errorf("expected 201, got %d", resp.StatusCode)
		}
		if resp := f.do(t, http.MethodPost, "/api/signup", "", creds); resp.StatusCode != http.StatusConflict {
			t.Errorf("expected 409, got %d", resp.StatusCode)
		}
	})

	t.Run("login failure", func(t *testing.T) {
		f := setupAPI(t, nil)
		resp := f.do(t, http.MethodPost, "/api/login", "", credentialsRequest{Username: "ghost", Password: "x"})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("protected routes require session", func(t *testing.T) {
		f := setupAPI(t, nil)
		for _, id := range []string{"", "not-a-session"} {
			resp := f.do(t, http.MethodGet, "/api/watchlist", id, nil)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Errorf("session %q: expected 401, got %d", id, resp.StatusCode)
			}
		}
	})

	t.Run("invalid body", func(t *testing.T) {
		f := setupAPI(t, nil)
		resp, err := http.Post(f.server.URL+"/api/login", "application/json", strings.NewReader("{"))
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("search, add, list, remove", func(t *testing.T) {
		f := setupAPI(t, nil)
		id := f.loginAs(t, "alice", "pw1")

		resp := f.do(t, http.MethodPost, "/api/search", id, titleRequest{Title: "Dune"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("search status = %d", resp.StatusCode)
		}
		var record models.EnrichedRecord
		decodeBody(t, resp, &record)
		if record.Title != "Dune" || record.Rating != "8.0" {
			t.Errorf("unexpected record %+v", record)
		}

		resp = f.do(t, http.MethodPost, "/api/watchlist", id, nil)
		if resp.StatusCode != http.StatusCreated {
			t.Errorf("add status = %d, want 201", resp.StatusCode)
		}
		var added addResponse
		decodeBody(t, resp, &added)
		if added.Title != "Dune" || added.Result != models.Added.String() {
			t.Errorf("unexpected add response %+v", added)
		}

		resp = f.do(t, http.MethodPost, "/api/watchlist", id, nil)
		if resp.StatusCode != http.StatusConflict {
			t.Errorf("duplicate add status = %d, want 409", resp.StatusCode)
		}
		var dup addResponse
		decodeBody(t, resp, &dup)
		if dup.Warning != alreadyInWatchlist || dup.Title != "Dune" {
			t.Errorf("expected duplicate warning, got %+v", dup)
		}

		resp = f.do(t, http.MethodGet, "/api/watchlist", id, nil)
		var entries []models.WatchlistEntry
		decodeBody(t, resp, &entries)
		if len(entries) != 1 || entries[0].AvailableOn != "Max, Netflix" {
			t.Errorf("unexpected entries %+v", entries)
		}

		resp = f.do(t, http.MethodGet, "/api/watchlist?format=csv", id, nil)
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
			t.Errorf("expected csv content type, got %s", ct)
		}

		if resp := f.do(t, http.MethodDelete, "/api/watchlist/"+url.PathEscape("Dune"), id, nil); resp.StatusCode != http.StatusNoContent {
			t.Errorf("remove status = %d, want 204", resp.StatusCode)
		}

		resp = f.do(t, http.MethodGet, "/api/watchlist", id, nil)
		entries = nil
		decodeBody(t, resp, &entries)
		if len(entries) != 0 {
			t.Errorf("expected empty watchlist after remove, got %d", len(entries))
		}
	})

	t.Run("search with no match", func(t *testing.T) {
		f := setupAPI(t, nil)
		id := f.loginAs(t, "alice", "pw1")

		if resp := f.do(t, http.MethodPost, "/api/search", id, titleRequest{Title: "zzzz"}); resp.StatusCode != http.StatusNotFound {
			t.Errorf("expected 404, got %d", resp.StatusCode)
		}
		if resp := f.do(t, http.MethodPost, "/api/watchlist", id, nil); resp.StatusCode != http.StatusNotFound {
			t.Errorf("add without result: expected 404, got %d", resp.StatusCode)
		}
	})

	t.Run("empty search input", func(t *testing.T) {
		f := setupAPI(t, nil)
		id := f.loginAs(t, "alice", "pw1")

		if resp := f.do(t, http.MethodPost, "/api/search", id, titleRequest{Title: " "}); resp.StatusCode != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", resp.StatusCode)
		}
	})

	t.Run("recommendations and session view", func(t *testing.T) {
		f := setupAPI(t, &tu.MockLanguageModel{Reply: "Alien, Sunshine"})
		id := f.loginAs(t, "alice", "pw1")

		resp := f.do(t, http.MethodPost, "/api/recommendations/genre", id, genreRequest{Genre: "space horror"})
		var recs recommendationsResponse
		decodeBody(t, resp, &recs)
		if len(recs.Titles) != 2 || recs.Genre != "space horror" {
			t.Errorf("unexpected genre recs %+v", recs)
		}

		resp = f.do(t, http.MethodGet, "/api/session", id, nil)
		var snap session.Snapshot
		decodeBody(t, resp, &snap)
		if snap.View != "genre" || snap.User != "alice" {
			t.Errorf("unexpected snapshot %+v", snap)
		}

		resp = f.do(t, http.MethodPost, "/api/recommendations/personal", id, nil)
		recs = recommendationsResponse{}
		decodeBody(t, resp, &recs)
		if len(recs.Titles) != 0 {
			t.Errorf("expected no personal recs for empty watchlist, got %v", recs.Titles)
		}
	})

	t.Run("provider failure maps to 502", func(t *testing.T) {
		f := setupAPI(t, &tu.MockLanguageModel{Err: errors.New("overloaded")})
		id := f.loginAs(t, "alice", "pw1")

		if resp := f.do(t, http.MethodPost, "/api/recommendations/genre", id, genreRequest{Genre: "noir"}); resp.StatusCode != http.StatusBadGateway {
			t.Errorf("expected 502, got %d", resp.StatusCode)
		}
	})

	t.Run("logout invalidates session", func(t *testing.T) {
		f := setupAPI(t, nil)
		id := f.loginAs(t, "alice", "pw1")

		if resp := f.do(t, http.MethodPost, "/api/logout", id, nil); resp.StatusCode != http.StatusNoContent {
			t.Errorf("logout status = %d", resp.StatusCode)
		}
		if resp := f.do(t, http.MethodGet, "/api/session", id, nil); resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
		}
	})

	t.Run("clear", func(t *testing.T) {
		f := setupAPI(t, nil)
		id := f.loginAs(t, "alice", "pw1")

		f.do(t, http.MethodPost, "/api/search", id, titleRequest{Title: "Dune"})
		f.do(t, http.MethodPost, "/api/watchlist", id, nil)

		if resp := f.do(t, http.MethodDelete, "/api/watchlist", id, nil); resp.StatusCode != http.StatusNoContent {
			t.Errorf("clear status = %d", resp.StatusCode)
		}
		resp := f.do(t, http.MethodGet, "/api/watchlist", id, nil)
		var entries []models.WatchlistEntry
		decodeBody(t, resp, &entries)
		if len(entries) != 0 {
			t.Errorf("expected empty watchlist, got %d", len(entries))
		}
	})
}

func TestStatusFor(t *testing.T) {
	tc := []struct {
		err  error
		want int
	}{
		{err: shared.ErrInvalidInput, want: http.StatusBadRequest},
		{err: shared.ErrNotAuthenticated, want: http.StatusUnauthorized},
		{err: shared.ErrInvalidCredentials, want: http.StatusUnauthorized},
		{err: shared.ErrNoSearchResult, want: http.StatusNotFound},
		{err: shared.ErrUsernameTaken, want: http.StatusConflict},
		{err: fmt.Errorf("%w: tmdb", shared.ErrAPIRequest), want: http.StatusBadGateway},
		{err: errors.New("disk full"), want: http.StatusInternalServerError},
	}

	for _, tt := range tc {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestRouter(t *testing.T) {
	t.Run("middleware order", func(t *testing.T) {
		var order []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					order = append(order, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewBasicRouter()
		router.Use(mw("first"), mw("second"))
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		if strings.Join(order, ",") != "first,second,handler" {
			t.Errorf("unexpected order %v", order)
		}
	})

	t.Run("routes", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.NotFoundHandler())
		router.Handler(NewAPIHandler(nil, nil, nil))

		routes := router.Routes()
		if !slices.Contains(routes, "GET /ping") || !slices.Contains(routes, "POST /api/login") {
			t.Errorf("missing routes in %v", routes)
		}
		if !slices.IsSorted(routes) {
			t.Errorf("expected sorted routes, got %v", routes)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		router := NewBasicRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("recover", func(t *testing.T) {
		router := NewBasicRouter()
		router.Use(Recover(shared.NewLogger(io.Discard)))
		router.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
	})
}

func TestServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", http.NotFoundHandler(), shared.NewLogger(io.Discard))

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run() after cancel = %v, want nil", err)
	}
}
