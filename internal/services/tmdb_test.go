package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

func newTMDBServer(t *testing.T, check func(r *http.Request)) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/movie", func(w http.ResponseWriter, r *http.Request) {
		check(r)
		if r.URL.Query().Get("query") == "Dune" {
			w.Write([]byte(`{"page":1,"results":[{"id":438631,"title":"Dune","release_date":"2021-09-15"},{"id":841,"title":"Dune","release_date":"1984-12-14"}]}`))
			return
		}
		w.Write([]byte(`{"page":1,"results":[]}`))
	})
	mux.HandleFunc("GET /search/tv", func(w http.ResponseWriter, r *http.Request) {
		check(r)
		w.Write([]byte(`{"page":1,"results":[{"id":1396,"name":"Breaking Bad","first_air_date":"2008-01-20"}]}`))
	})
	mux.HandleFunc("GET /movie/438631", func(w http.ResponseWriter, r *http.Request) {
		check(r)
		w.Write([]byte(`{"id":438631,"title":"Dune","overview":"Spice.","vote_average":7.8,"poster_path":"/d5NXSklXo0qyIYkgV94XAgMIckC.jpg","genres":[{"id":878,"name":"Science Fiction"},{"id":12,"name":"Adventure"}],"release_date":"2021-09-15"}`))
	})
	mux.HandleFunc("GET /tv/1396", func(w http.ResponseWriter, r *http.Request) {
		check(r)
		w.Write([]byte(`{"id":1396,"name":"Breaking Bad","overview":"","poster_path":null,"genres":[],"first_air_date":"2008-01-20"}`))
	})
	mux.HandleFunc("GET /movie/438631/similar", func(w http.ResponseWriter, r *http.Request) {
		check(r)
		w.Write([]byte(`{"page":1,"results":[{"title":"A"},{"title":"B"},{"title":"C"},{"title":"D"},{"title":"E"},{"title":"F"},{"title":"G"}]}`))
	})
	mux.HandleFunc("GET /movie/404", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"status_code":34,"status_message":"The resource you requested could not be found."}`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestTMDBService(t *testing.T) {
	t.Run("NewTMDBService", func(t *testing.T) {
		t.Run("Missing Credentials", func(t *testing.T) {
			_, err := NewTMDBService(shared.TMDBConfig{}, shared.HTTPConfig{})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Defaults", func(t *testing.T) {
			srv, err := NewTMDBService(shared.TMDBConfig{APIKey: "k"}, shared.HTTPConfig{})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.baseURL != tmdbBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
			if srv.Name() != "TMDB" {
				t.Errorf("expected name TMDB, got %s", srv.Name())
			}
		})
	})

	t.Run("API Key Auth", func(t *testing.T) {
		server := newTMDBServer(t, func(r *http.Request) {
			if got := r.URL.Query().Get("api_key"); got != "v3key" {
				t.Errorf("expected api_key v3key, got %q", got)
			}
			if r.Header.Get("Authorization") != "" {
				t.Error("expected no Authorization header with api_key auth")
			}
		})

		srv, err := NewTMDBService(shared.TMDBConfig{APIKey: "v3key", BaseURL: server.URL}, shared.HTTPConfig{})
		if err != nil {
			t.Fatalf("NewTMDBService() error = %v", err)
		}

		match, err := srv.SearchTitle(context.Background(), "Dune", models.MediaMovie)
		if err != nil {
			t.Fatalf("SearchTitle() error = %v", err)
		}
		if match == nil || match.ID != 438631 || match.Title != "Dune" || match.ReleaseDate != "2021-09-15" {
			t.Errorf("expected first result, got %+v", match)
		}
	})

	t.Run("Bearer Token Auth", func(t *testing.T) {
		server := newTMDBServer(t, func(r *http.Request) {
			if got := r.Header.Get("Authorization"); got != "Bearer v4token" {
				t.Errorf("expected bearer token, got %q", got)
			}
			if r.URL.Query().Has("api_key") {
				t.Error("expected no api_key with bearer auth")
			}
		})

		srv, err := NewTMDBService(shared.TMDBConfig{APIKey: "v3key", AccessToken: "v4token", BaseURL: server.URL}, shared.HTTPConfig{})
		if err != nil {
			t.Fatalf("NewTMDBService() error = %v", err)
		}

		if _, err := srv.SearchTitle(context.Background(), "Dune", models.MediaMovie); err != nil {
			t.Fatalf("SearchTitle() error = %v", err)
		}
	})

	server := newTMDBServer(t, func(*http.Request) {})
	srv, err := NewTMDBService(shared.TMDBConfig{APIKey: "k", BaseURL: server.URL}, shared.HTTPConfig{})
	if err != nil {
		t.Fatalf("NewTMDBService() error = %v", err)
	}
	ctx := context.Background()

	t.Run("SearchTitle No Results", func(t *testing.T) {
		match, err := srv.SearchTitle(ctx, "zzzz", models.MediaMovie)
		if err != nil {
			t.Fatalf("SearchTitle() error = %v", err)
		}
		if match != nil {
			t.Errorf("expected nil match, got %+v", match)
		}
	})

	t.Run("SearchTitle TV", func(t *testing.T) {
		match, err := srv.SearchTitle(ctx, "Breaking Bad", models.MediaTV)
		if err != nil {
			t.Fatalf("SearchTitle() error = %v", err)
		}
		if match.Title != "Breaking Bad" || match.MediaType != models.MediaTV || match.ReleaseDate != "2008-01-20" {
			t.Errorf("unexpected tv match: %+v", match)
		}
	})

	t.Run("TitleDetails Movie", func(t *testing.T) {
		d, err := srv.TitleDetails(ctx, models.TitleMatch{ID: 438631, MediaType: models.MediaMovie})
		if err != nil {
			t.Fatalf("TitleDetails() error = %v", err)
		}
		if d.Rating == nil || *d.Rating != 7.8 {
			t.Errorf("expected rating 7.8, got %v", d.Rating)
		}
		if !slices.Equal(d.Genres, []string{"Science Fiction", "Adventure"}) {
			t.Errorf("unexpected genres %v", d.Genres)
		}
		if srv.PosterURL(d.PosterPath) != "https://image.tmdb.org/t/p/w500/d5NXSklXo0qyIYkgV94XAgMIckC.jpg" {
			t.Errorf("unexpected poster url %s", srv.PosterURL(d.PosterPath))
		}
	})

	t.Run("TitleDetails TV With Missing Fields", func(t *testing.T) {
		d, err := srv.TitleDetails(ctx, models.TitleMatch{ID: 1396, MediaType: models.MediaTV})
		if err != nil {
			t.Fatalf("TitleDetails() error = %v", err)
		}
		if d.Title != "Breaking Bad" || d.ReleaseDate != "2008-01-20" {
			t.Errorf("expected tv name and air date, got %+v", d)
		}
		if d.Rating != nil {
			t.Errorf("expected nil rating, got %v", *d.Rating)
		}
		if d.PosterPath != "" || srv.PosterURL(d.PosterPath) != "" {
			t.Errorf("expected no poster, got %q", d.PosterPath)
		}
	})

	t.Run("TitleDetails Not Found", func(t *testing.T) {
		_, err := srv.TitleDetails(ctx, models.TitleMatch{ID: 404, MediaType: models.MediaMovie})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Fatalf("expected ErrAPIRequest, got %v", err)
		}
		if want := "could not be found"; !contains(err.Error(), want) {
			t.Errorf("expected provider message in %q", err.Error())
		}
	})

	t.Run("SimilarTitles Truncates", func(t *testing.T) {
		titles, err := srv.SimilarTitles(ctx, models.TitleMatch{ID: 438631, MediaType: models.MediaMovie}, 5)
		if err != nil {
			t.Fatalf("SimilarTitles() error = %v", err)
		}
		if !slices.Equal(titles, []string{"A", "B", "C", "D", "E"}) {
			t.Errorf("expected first five titles, got %v", titles)
		}
	})
}
