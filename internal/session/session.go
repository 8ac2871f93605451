package session

import (
	"sync"
	"time"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

// View identifies which result a session is currently showing.
type View int

const (
	ViewNone View = iota
	ViewSearch
	ViewGenre
	ViewPersonal
)

func (v View) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewGenre:
		return "genre"
	case ViewPersonal:
		return "personal"
	default:
		return "none"
	}
}

// Session is the ephemeral state of one logged-in user.
type Session struct {
	mu sync.Mutex

	id            string
	startedAt     time.Time
	authenticated bool
	user          string

	// searched distinguishes "searched, nothing matched" from "no search yet".
	searched     bool
	result       *models.EnrichedRecord
	genreRecs    []string
	personalRecs []string
	lastGenre    string
	lastSearch   string
}

// Snapshot is a copy of session state safe to hand to a renderer.
type Snapshot struct {
	ID                      string                 `json:"id"`
	StartedAt               time.Time              `json:"started_at"`
	Authenticated           bool                   `json:"authenticated"`
	User                    string                 `json:"user,omitempty"`
	View                    string                 `json:"view"`
	Query                   string                 `json:"query,omitempty"`
	SearchResult            *models.EnrichedRecord `json:"search_result,omitempty"`
	GenreRecommendations    []string               `json:"genre_recommendations,omitempty"`
	PersonalRecommendations []string               `json:"personal_recommendations,omitempty"`
}

func newSession(user string) *Session {
	return &Session{
		id:            shared.GenerateID(),
		startedAt:     time.Now(),
		authenticated: true,
		user:          user,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// User returns the logged-in username, or "" after logout.
func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Authenticated reports whether the session is logged in.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// View reports which result is live.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	switch {
	case s.searched:
		return ViewSearch
	case s.genreRecs != nil:
		return ViewGenre
	case s.personalRecs != nil:
		return ViewPersonal
	default:
		return ViewNone
	}
}

// SearchResult returns the live search result. ok is false when no search is live; a live
// search that matched nothing returns nil, true.
func (s *Session) SearchResult() (record *models.EnrichedRecord, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.searched
}

// GenreRecommendations returns the live genre list, or nil.
func (s *Session) GenreRecommendations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.genreRecs
}

// PersonalRecommendations returns the live personal list, or nil.
func (s *Session) PersonalRecommendations() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.personalRecs
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:                      s.id,
		StartedAt:               s.startedAt,
		Authenticated:           s.authenticated,
		User:                    s.user,
		View:                    s.view().String(),
		SearchResult:            s.result,
		GenreRecommendations:    s.genreRecs,
		PersonalRecommendations: s.personalRecs,
	}
	switch s.view() {
	case ViewSearch:
		snap.Query = s.lastSearch
	case ViewGenre:
		snap.Query = s.lastGenre
	}
	return snap
}

// The setters below must be called with mu held.

func (s *Session) showSearch(query string, record *models.EnrichedRecord) {
	s.clearViews()
	s.searched = true
	s.lastSearch = query
	s.result = record
}

func (s *Session) showGenre(genre string, recs []string) {
	s.clearViews()
	s.lastGenre = genre
	s.genreRecs = nonNil(recs)
}

func (s *Session) showPersonal(recs []string) {
	s.clearViews()
	s.personalRecs = nonNil(recs)
}

func (s *Session) clearViews() {
	s.searched = false
	s.result = nil
	s.lastSearch = ""
	s.genreRecs = nil
	s.lastGenre = ""
	s.personalRecs = nil
}

func (s *Session) reset() {
	s.clearViews()
	s.authenticated = false
	s.user = ""
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
