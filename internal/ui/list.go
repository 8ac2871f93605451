package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/reel/internal/models"
)

var _ list.Item = entryItem{}

// entryItem wraps [models.WatchlistEntry] to implement [list.Item].
type entryItem struct {
	entry models.WatchlistEntry
}

func (i entryItem) FilterValue() string { return i.entry.Title }
func (i entryItem) Title() string       { return i.entry.Title }
func (i entryItem) Description() string {
	desc := fmt.Sprintf("Rating: %s", i.entry.Rating)
	if i.entry.AvailableOn != "" {
		desc = fmt.Sprintf("%s • Available on: %s", desc, i.entry.AvailableOn)
	}
	return desc
}

// newWatchlist builds the list shown on the watchlist screen.
func newWatchlist(entries []models.WatchlistEntry, width, height int) list.Model {
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}

	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "My Watchlist"
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	return l
}
