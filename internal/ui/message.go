package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgLoggedIn MsgKind = iota
	MsgSignedUp
	MsgProgressUpdate
	MsgSearchDone
	MsgRecommendations
	MsgAdded
	MsgWatchlistLoaded
	MsgWatchlistChanged
	MsgPosterOpened
)

type loginResult struct {
	session *session.Session
	err     error
}

type signupResult struct {
	created bool
	err     error
}

type searchResult struct {
	query  string
	record *models.EnrichedRecord
	err    error
}

type recommendationsResult struct {
	session  *session.Session
	personal bool
	titles   []string
	err      error
}

type addResult struct {
	result models.AddResult
	title  string
	err    error
}

type watchlistResult struct {
	session *session.Session
	entries []models.WatchlistEntry
	message string
	err     error
}

type changeResult struct {
	message string
	err     error
}

// loggedInMsg is the constructor for [MsgLoggedIn]
func loggedInMsg(s *session.Session, err error) Msg {
	return Msg{kind: MsgLoggedIn, data: loginResult{s, err}}
}

// signedUpMsg is the constructor for [MsgSignedUp]
func signedUpMsg(created bool, err error) Msg {
	return Msg{kind: MsgSignedUp, data: signupResult{created, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(query string, record *models.EnrichedRecord, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchResult{query, record, err}}
}

// recommendationsMsg is the constructor for [MsgRecommendations]
func recommendationsMsg(s *session.Session, personal bool, titles []string, err error) Msg {
	return Msg{kind: MsgRecommendations, data: recommendationsResult{s, personal, titles, err}}
}

// addedMsg is the constructor for [MsgAdded]
func addedMsg(result models.AddResult, title string, err error) Msg {
	return Msg{kind: MsgAdded, data: addResult{result, title, err}}
}

// watchlistLoadedMsg is the constructor for [MsgWatchlistLoaded]
func watchlistLoadedMsg(s *session.Session, entries []models.WatchlistEntry, message string, err error) Msg {
	return Msg{kind: MsgWatchlistLoaded, data: watchlistResult{s, entries, message, err}}
}

// watchlistChangedMsg is the constructor for [MsgWatchlistChanged]
func watchlistChangedMsg(message string, err error) Msg {
	return Msg{kind: MsgWatchlistChanged, data: changeResult{message, err}}
}

// posterOpenedMsg is the constructor for [MsgPosterOpened]
func posterOpenedMsg(err error) Msg {
	return Msg{kind: MsgPosterOpened, data: err}
}
