// package models defines the data model for the watchlist and recommendation service
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Defaults stored when the metadata provider omits a field.
const (
	NoSummary = "No summary available."
	NoRating  = "N/A"
)

// PlatformSeparator joins availability platforms when persisted.
const PlatformSeparator = ", "

// MediaType distinguishes films from series in provider results.
type MediaType string

const (
	MediaMovie MediaType = "movie"
	MediaTV    MediaType = "tv"
)

var validate = validator.New()

// User is an account. Created on signup, never updated or deleted.
type User struct {
	Username     string `json:"username" validate:"required"`
	PasswordHash string `json:"-" validate:"required,len=64,hexadecimal"`
}

// Validate checks struct tag constraints.
func (u *User) Validate() error {
	if err := validate.Struct(u); err != nil {
		return fmt.Errorf("invalid user: %w", err)
	}
	return nil
}

// WatchlistEntry is a title saved by a user. (Username, Title) is unique.
type WatchlistEntry struct {
	Username    string    `json:"username" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Rating      string    `json:"rating"`
	Summary     string    `json:"summary"`
	AvailableOn string    `json:"available_on"`
	AddedOn     time.Time `json:"added_on"`
}

// Validate checks struct tag constraints.
func (e *WatchlistEntry) Validate() error {
	if err := validate.Struct(e); err != nil {
		return fmt.Errorf("invalid watchlist entry: %w", err)
	}
	return nil
}

// Platforms splits AvailableOn back into its platform names.
func (e *WatchlistEntry) Platforms() []string {
	if strings.TrimSpace(e.AvailableOn) == "" {
		return []string{}
	}
	parts := strings.Split(e.AvailableOn, PlatformSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EnrichedRecord aggregates everything known about a single title after a lookup.
type EnrichedRecord struct {
	Title         string    `json:"title"`
	Summary       string    `json:"summary"`
	Rating        string    `json:"rating"`
	PosterURL     string    `json:"poster_url,omitempty"`
	Genres        []string  `json:"genres"`
	SimilarTitles []string  `json:"similar_titles"`
	AvailableOn   []string  `json:"available_on"`
	MediaType     MediaType `json:"media_type"`
	ProviderID    int       `json:"provider_id"`
	ReleaseDate   string    `json:"release_date,omitempty"`
}

// Entry converts the record into the row stored for username.
func (r *EnrichedRecord) Entry(username string) *WatchlistEntry {
	return &WatchlistEntry{
		Username:    username,
		Title:       r.Title,
		Rating:      r.Rating,
		Summary:     r.Summary,
		AvailableOn: strings.Join(r.AvailableOn, PlatformSeparator),
	}
}

// AddResult is the outcome of a watchlist insert.
type AddResult int

const (
	Added AddResult = iota
	AlreadyExists
)

func (a AddResult) String() string {
	switch a {
	case Added:
		return "added"
	case AlreadyExists:
		return "already exists"
	default:
		return "unknown"
	}
}

// TitleMatch is the top hit of a metadata search.
type TitleMatch struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	MediaType   MediaType `json:"media_type"`
	ReleaseDate string    `json:"release_date,omitempty"`
}

// TitleDetails is the provider's detail record for a [TitleMatch].
//
// Rating is nil when the provider omits vote_average.
type TitleDetails struct {
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	Rating      *float64 `json:"rating,omitempty"`
	PosterPath  string   `json:"poster_path,omitempty"`
	Genres      []string `json:"genres"`
	ReleaseDate string   `json:"release_date,omitempty"`
}

// SearchResult is a single organic web search hit.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// CompletionRequest is a single-turn prompt for the language model.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}
