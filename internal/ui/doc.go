// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a small state machine over three screens:
//  1. [AuthScreen] : Log in or sign up with a username and password
//  2. [MainScreen] : Search a title or ask for titles in a genre, then act on the result
//  3. [WatchlistScreen] : Browse saved titles, remove one or clear them all
//
// All state that outlives a screen (the signed-in user and the one live result) is held by a
// [session.Session]; the [Model] only renders it and forwards actions to the
// [session.Controller]. Work runs in tea.Cmd functions that report back through the Msg union
// type, and lookup progress streams through a channel from the enrichment pipeline.
//
// Keyboard handling uses ctrl-chords on the main screen so that typing into the query field
// never triggers an action; contextual help is drawn with charmbracelet/bubbles/help.
package ui
