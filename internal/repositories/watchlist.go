package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/reel/internal/models"
)

// WatchlistRepository persists saved titles per user.
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a new [WatchlistRepository] with the given database connection
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Exists reports whether username has saved title.
func (r *WatchlistRepository) Exists(username, title string) (bool, error) {
	var exists bool
	query := "SELECT EXISTS(SELECT 1 FROM watchlist WHERE username = ? AND title = ?)"
	if err := r.db.QueryRow(query, username, title).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check watchlist entry: %w", err)
	}
	return exists, nil
}

// Add inserts entry. An existing (username, title) row is left untouched and reported as
// [models.AlreadyExists].
func (r *WatchlistRepository) Add(entry *models.WatchlistEntry) (models.AddResult, error) {
	if err := entry.Validate(); err != nil {
		return models.Added, fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO watchlist (username, title, rating, summary, available_on)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query, entry.Username, entry.Title, entry.Rating, entry.Summary, entry.AvailableOn)
	if isDuplicate(err) {
		return models.AlreadyExists, nil
	}
	if err != nil {
		return models.Added, fmt.Errorf("failed to insert watchlist entry: %w", err)
	}

	return models.Added, nil
}

// List returns every entry saved by username in insertion order.
func (r *WatchlistRepository) List(username string) ([]models.WatchlistEntry, error) {
	query := `
		SELECT username, title, rating, summary, available_on, added_on
		FROM watchlist
		WHERE username = ?
		ORDER BY rowid ASC
	`

	rows, err := r.db.Query(query, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	entries := []models.WatchlistEntry{}
	for rows.Next() {
		var e models.WatchlistEntry
		var rating, summary, availableOn sql.NullString
		if err := rows.Scan(&e.Username, &e.Title, &rating, &summary, &availableOn, &e.AddedOn); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}
		e.Rating, e.Summary, e.AvailableOn = rating.String, summary.String, availableOn.String
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return entries, nil
}

// Titles returns only the saved titles for username, in insertion order.
func (r *WatchlistRepository) Titles(username string) ([]string, error) {
	rows, err := r.db.Query("SELECT title FROM watchlist WHERE username = ? ORDER BY rowid ASC", username)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist titles: %w", err)
	}
	defer rows.Close()

	titles := []string{}
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist title: %w", err)
		}
		titles = append(titles, title)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return titles, nil
}

// Remove deletes title from username's watchlist. Removing an absent title is not an error.
func (r *WatchlistRepository) Remove(username, title string) error {
	if _, err := r.db.Exec("DELETE FROM watchlist WHERE username = ? AND title = ?", username, title); err != nil {
		return fmt.Errorf("failed to remove watchlist entry: %w", err)
	}
	return nil
}

// Clear deletes every entry belonging to username and no one else.
func (r *WatchlistRepository) Clear(username string) error {
	if _, err := r.db.Exec("DELETE FROM watchlist WHERE username = ?", username); err != nil {
		return fmt.Errorf("failed to clear watchlist: %w", err)
	}
	return nil
}
