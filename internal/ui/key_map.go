package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Main screen actions are ctrl-chords so they never collide with text typed into the query.
type keyMap struct {
	submit    key.Binding
	next      key.Binding
	signup    key.Binding
	add       key.Binding
	watchlist key.Binding
	personal  key.Binding
	poster    key.Binding
	logout    key.Binding
	back      key.Binding
	remove    key.Binding
	clear     key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		next:      key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "switch")),
		signup:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "login/sign up")),
		add:       key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "add to watchlist")),
		watchlist: key.NewBinding(key.WithKeys("ctrl+w"), key.WithHelp("ctrl+w", "watchlist")),
		personal:  key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "personal recs")),
		poster:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "open poster")),
		logout:    key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "logout")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		remove:    key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "remove")),
		clear:     key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear all")),
		quit:      key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.next, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.submit, k.next, k.signup},
		{k.add, k.watchlist, k.personal, k.poster},
		{k.back, k.remove, k.clear},
		{k.logout, k.quit},
	}
}
