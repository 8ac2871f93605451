package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/formatter"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/shared"
)

// SessionHeader carries the ID returned by login on every protected request.
const SessionHeader = "X-Session-ID"

// Watchlist duplicate message, shown as a warning rather than an error.
const alreadyInWatchlist = "Already in your watchlist."

type sessionKey struct{}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type titleRequest struct {
	Title string `json:"title"`
}

type genreRequest struct {
	Genre string `json:"genre"`
}

type errorBody struct {
	Error string `json:"error"`
}

type loginResponse struct {
	SessionID string `json:"session_id"`
	User      string `json:"user"`
}

type recommendationsResponse struct {
	Genre  string   `json:"genre,omitempty"`
	Titles []string `json:"titles"`
}

type addResponse struct {
	Result  string `json:"result"`
	Title   string `json:"title"`
	Warning string `json:"warning,omitempty"`
}

// APIHandler serves the JSON API on top of a [session.Controller].
type APIHandler struct {
	controller *session.Controller
	sessions   *session.Registry
	logger     *log.Logger
	mux        *http.ServeMux
	routes     []string
}

// NewAPIHandler creates an [APIHandler] and builds its route table.
func NewAPIHandler(controller *session.Controller, sessions *session.Registry, logger *log.Logger) *APIHandler {
	h := &APIHandler{
		controller: controller,
		sessions:   sessions,
		logger:     logger,
		mux:        http.NewServeMux(),
	}

	h.route("POST /api/signup", h.signup)
	h.route("POST /api/login", h.login)
	h.route("POST /api/logout", h.withSession(h.logout))
	h.route("GET /api/session", h.withSession(h.current))
	h.route("POST /api/search", h.withSession(h.search))
	h.route("POST /api/recommendations/genre", h.withSession(h.genre))
	h.route("POST /api/recommendations/personal", h.withSession(h.personal))
	h.route("GET /api/watchlist", h.withSession(h.listWatchlist))
	h.route("POST /api/watchlist", h.withSession(h.addWatchlist))
	h.route("DELETE /api/watchlist/{title...}", h.withSession(h.removeWatchlist))
	h.route("DELETE /api/watchlist", h.withSession(h.clearWatchlist))

	return h
}

func (h *APIHandler) route(pattern string, fn http.HandlerFunc) {
	h.mux.HandleFunc(pattern, fn)
	h.routes = append(h.routes, pattern)
}

// Routes returns the HTTP routes this handler serves.
func (h *APIHandler) Routes() []string {
	return h.routes
}

// ServeHTTP dispatches to the route's handler.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *APIHandler) withSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(SessionHeader)
		if id == "" {
			h.writeError(w, shared.ErrNotAuthenticated)
			return
		}
		s, err := h.sessions.Get(id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, s)))
	}
}

func sessionFrom(r *http.Request) *session.Session {
	s, _ := r.Context().Value(sessionKey{}).(*session.Session)
	return s
}

// Health reports liveness and the number of live API sessions.
func Health(sessions *session.Registry) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": sessions.Len()})
	})
}

func (h *APIHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	ok, err := h.controller.SignUp(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		h.writeError(w, shared.ErrUsernameTaken)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user": req.Username})
}

func (h *APIHandler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	s, err := h.controller.Login(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.sessions.Put(s)
	writeJSON(w, http.StatusOK, loginResponse{SessionID: s.ID(), User: s.User()})
}

func (h *APIHandler) logout(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	h.controller.Logout(s)
	h.sessions.Delete(s.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) current(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r).Snapshot())
}

func (h *APIHandler) search(w http.ResponseWriter, r *http.Request) {
	var req titleRequest
	if !h.decode(w, r, &req) {
		return
	}

	record, err := h.controller.Search(r.Context(), sessionFrom(r), req.Title, nil)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if record == nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: shared.ErrTitleNotFound.Error()})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *APIHandler) genre(w http.ResponseWriter, r *http.Request) {
	var req genreRequest
	if !h.decode(w, r, &req) {
		return
	}

	titles, err := h.controller.GenreRecommendations(r.Context(), sessionFrom(r), req.Genre)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{Genre: req.Genre, Titles: titles})
}

func (h *APIHandler) personal(w http.ResponseWriter, r *http.Request) {
	titles, err := h.controller.PersonalRecommendations(r.Context(), sessionFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationsResponse{Titles: titles})
}

// listWatchlist returns JSON entries, or an export document when ?format= is set.
func (h *APIHandler) listWatchlist(w http.ResponseWriter, r *http.Request) {
	s := sessionFrom(r)
	entries, err := h.controller.Watchlist(s)
	if err != nil {
		h.writeError(w, err)
		return
	}

	name := r.URL.Query().Get("format")
	if name == "" {
		writeJSON(w, http.StatusOK, entries)
		return
	}

	format, err := formatter.ParseFormat(name)
	if err != nil {
		h.writeError(w, err)
		return
	}
	data, err := formatter.Export(&formatter.Watchlist{Username: s.User(), Entries: entries}, format)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", contentType(format))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *APIHandler) addWatchlist(w http.ResponseWriter, r *http.Request) {
	result, title, err := h.controller.AddCurrent(sessionFrom(r))
	if err != nil {
		h.writeError(w, err)
		return
	}

	if result == models.AlreadyExists {
		writeJSON(w, http.StatusConflict, addResponse{Result: result.String(), Title: title, Warning: alreadyInWatchlist})
		return
	}
	writeJSON(w, http.StatusCreated, addResponse{Result: result.String(), Title: title})
}

func (h *APIHandler) removeWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Remove(sessionFrom(r), r.PathValue("title")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) clearWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := h.controller.Clear(sessionFrom(r)); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

// statusFor maps sentinel errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput), errors.Is(err, shared.ErrInvalidFlag):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrInvalidCredentials),
		errors.Is(err, shared.ErrSessionNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, shared.ErrNoSearchResult), errors.Is(err, shared.ErrTitleNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, shared.ErrAPIRequest), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func contentType(f formatter.Format) string {
	switch f {
	case formatter.FormatCSV:
		return "text/csv; charset=utf-8"
	case formatter.FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case formatter.FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
