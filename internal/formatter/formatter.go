// package formatter renders watchlists and lookup results to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
)

// Format names an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat resolves a user-supplied format name. "md" and "text" are accepted aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, s)
	}
}

// Extension returns the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatMarkdown {
		return "md"
	}
	return string(f)
}

// Watchlist is a user's saved titles, ready for export.
type Watchlist struct {
	Username string                  `json:"username"`
	Entries  []models.WatchlistEntry `json:"entries"`
}

const addedOnLayout = time.DateTime

// ExportToCSV converts a Watchlist to CSV format with columns: Title, Rating, Summary, Available On, Added On
func ExportToCSV(w *Watchlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Rating", "Summary", "Available On", "Added On"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range w.Entries {
		record := []string{e.Title, e.Rating, e.Summary, e.AvailableOn, formatAddedOn(e.AddedOn)}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Watchlist to Markdown with one section per title
func ExportToMarkdown(w *Watchlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s's Watchlist\n\n", w.Username)
	fmt.Fprintf(&buf, "**Titles**: %d\n\n", len(w.Entries))

	for _, e := range w.Entries {
		fmt.Fprintf(&buf, "## %s\n\n", e.Title)
		fmt.Fprintf(&buf, "**Rating**: %s\n\n", valueOr(e.Rating, models.NoRating))
		if e.Summary != "" {
			fmt.Fprintf(&buf, "%s\n\n", e.Summary)
		}
		if platforms := e.Platforms(); len(platforms) > 0 {
			buf.WriteString("**Available on**:\n\n")
			for _, p := range platforms {
				fmt.Fprintf(&buf, "- %s\n", p)
			}
			buf.WriteString("\n")
		}
		if !e.AddedOn.IsZero() {
			fmt.Fprintf(&buf, "_Added %s_\n\n", formatAddedOn(e.AddedOn))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Watchlist to plain text format
func ExportToText(w *Watchlist) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %s\n", w.Username)
	fmt.Fprintf(&buf, "Titles: %d\n\n", len(w.Entries))

	for i, e := range w.Entries {
		fmt.Fprintf(&buf, "%d. %s - Rating: %s\n", i+1, e.Title, valueOr(e.Rating, models.NoRating))
		if e.AvailableOn != "" {
			fmt.Fprintf(&buf, "   Available on: %s\n", e.AvailableOn)
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts a Watchlist to indented JSON
func ExportToJSON(w *Watchlist) ([]byte, error) {
	if w.Entries == nil {
		w = &Watchlist{Username: w.Username, Entries: []models.WatchlistEntry{}}
	}
	return shared.MarshalJSON(w, true)
}

// Export renders w in format f.
func Export(w *Watchlist, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(w)
	case FormatMarkdown:
		return ExportToMarkdown(w)
	case FormatText:
		return ExportToText(w)
	case FormatJSON:
		return ExportToJSON(w)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, f)
	}
}

// WriteExport renders w in format f and writes it to path.
//
// Defaults to {username}_watchlist.{ext} as the filename.
func WriteExport(w *Watchlist, f Format, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("%s_watchlist.%s", w.Username, f.Extension())
	}

	data, err := Export(w, f)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", f, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

// RecordToText renders a lookup result as the labeled block shown after a search
func RecordToText(r *models.EnrichedRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", r.Title)
	if r.ReleaseDate != "" {
		fmt.Fprintf(&b, "Released: %s (%s)\n", r.ReleaseDate, r.MediaType)
	}
	fmt.Fprintf(&b, "Rating: %s\n", r.Rating)
	if len(r.Genres) > 0 {
		fmt.Fprintf(&b, "Genres: %s\n", strings.Join(r.Genres, ", "))
	}
	fmt.Fprintf(&b, "Summary: %s\n", r.Summary)
	if r.PosterURL != "" {
		fmt.Fprintf(&b, "Poster: %s\n", r.PosterURL)
	}
	fmt.Fprintf(&b, "Similar: %s\n", valueOr(strings.Join(r.SimilarTitles, ", "), "-"))
	fmt.Fprintf(&b, "Available on: %s\n", valueOr(strings.Join(r.AvailableOn, ", "), "-"))

	return b.String()
}

// NumberedList renders items as "1. item" lines
func NumberedList(items []string) string {
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, item)
	}
	return b.String()
}

func formatAddedOn(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(addedOnLayout)
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
