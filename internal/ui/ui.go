package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/formatter"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
)

// Screen represents the current screen in the TUI.
type Screen int

const (
	AuthScreen Screen = iota
	MainScreen
	WatchlistScreen
)

// Mode selects what the main screen's query field is used for.
type Mode int

const (
	ModeTitle Mode = iota
	ModeGenre
)

func (m Mode) String() string {
	if m == ModeGenre {
		return "Genre"
	}
	return "Title"
}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusErr
)

// status is the one-line message shown under the input.
type status struct {
	kind statusKind
	text string
}

func (s status) render() string {
	switch s.kind {
	case statusOK:
		return styles.ok.Render(s.text)
	case statusWarn:
		return styles.warn.Render(s.text)
	case statusErr:
		return styles.err.Render(s.text)
	default:
		return styles.info.Render(s.text)
	}
}

// Model represents the TUI application state.
type Model struct {
	ctx        context.Context
	controller *session.Controller
	session    *session.Session
	user       string
	logger     *log.Logger
	openURL    func(string) error

	screen    Screen
	signingUp bool
	mode      Mode
	username  textinput.Model
	password  textinput.Model
	query     textinput.Model
	watchlist list.Model

	busy         bool
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	done         chan Msg
	progress     tasks.ProgressUpdate

	status status
	width  int
	height int
	help   help.Model
	keys   keyMap
}

// NewModel creates a new TUI model on top of controller. A nil logger discards output.
func NewModel(ctx context.Context, controller *session.Controller, logger *log.Logger) *Model {
	if logger == nil {
		logger = log.New(io.Discard)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.label

	m := &Model{
		ctx:        ctx,
		controller: controller,
		logger:     logger,
		openURL:    shared.OpenURL,
		screen:     AuthScreen,
		username:   newInput("Username", false),
		password:   newInput("Password", true),
		query:      newInput("", false),
		watchlist:  newWatchlist(nil, 0, 0),
		spinner:    sp,
		help:       help.New(),
		keys:       newKeyMap(),
	}
	m.username.Focus()
	m.setQueryPlaceholder()
	return m
}

func newInput(placeholder string, secret bool) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 256
	ti.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '•'
	}
	return ti
}

// Init implements [tea.Model].
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.watchlist.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.screen {
		case AuthScreen:
			return m.handleAuthKeys(msg)
		case MainScreen:
			return m.handleMainKeys(msg)
		case WatchlistScreen:
			return m.handleWatchlistKeys(msg)
		}

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgLoggedIn:
		res := msg.data.(loginResult)
		m.busy = false
		if res.err != nil {
			if errors.Is(res.err, shared.ErrInvalidCredentials) {
				m.setStatus(statusErr, "Invalid credentials.")
			} else {
				m.setError(res.err)
			}
			return m, nil
		}
		m.session = res.session
		m.user = res.session.User()
		m.password.Reset()
		m.screen = MainScreen
		m.focusQuery()
		m.setStatus(statusOK, "Login successful!")
		m.logger.Info("logged in", "user", res.session.User())

	case MsgSignedUp:
		res := msg.data.(signupResult)
		m.busy = false
		switch {
		case res.err != nil:
			m.setError(res.err)
		case !res.created:
			m.setStatus(statusWarn, "Username already exists.")
		default:
			m.signingUp = false
			m.password.Reset()
			m.setStatus(statusOK, "Account created! Please log in.")
		}

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForProgress()

	case MsgSearchDone:
		res := msg.data.(searchResult)
		m.busy = false
		m.progressChan, m.done = nil, nil
		m.progress = tasks.ProgressUpdate{}
		switch {
		case res.err != nil:
			m.setError(res.err)
		case res.record == nil:
			m.setStatus(statusInfo, fmt.Sprintf("No match found for %q.", res.query))
		default:
			m.clearStatus()
		}

	case MsgRecommendations:
		res := msg.data.(recommendationsResult)
		m.busy = false
		if m.stale(res.session) {
			return m, nil
		}
		switch {
		case res.err != nil:
			m.setError(res.err)
		case res.personal && len(res.titles) == 0:
			m.setStatus(statusInfo, "Your watchlist is empty.")
		default:
			m.clearStatus()
		}
		if res.personal {
			m.screen = MainScreen
			m.focusQuery()
		}

	case MsgAdded:
		res := msg.data.(addResult)
		switch {
		case errors.Is(res.err, shared.ErrNoSearchResult):
			m.setStatus(statusWarn, "Search for a title first.")
		case res.err != nil:
			m.setError(res.err)
		case res.result == models.AlreadyExists:
			m.setStatus(statusWarn, "Already in your watchlist.")
		default:
			m.setStatus(statusOK, "Added to watchlist!")
		}

	case MsgWatchlistLoaded:
		res := msg.data.(watchlistResult)
		if m.stale(res.session) {
			return m, nil
		}
		if res.err != nil {
			m.setError(res.err)
			return m, nil
		}
		m.watchlist = newWatchlist(res.entries, m.width-4, m.height-8)
		m.screen = WatchlistScreen
		m.query.Blur()
		switch {
		case res.message != "":
			m.setStatus(statusOK, res.message)
		case len(res.entries) == 0:
			m.setStatus(statusInfo, "Your watchlist is empty.")
		default:
			m.clearStatus()
		}

	case MsgWatchlistChanged:
		res := msg.data.(changeResult)
		if res.err != nil {
			m.setError(res.err)
			return m, nil
		}
		return m, m.reloadWatchlist(res.message)

	case MsgPosterOpened:
		if err, _ := msg.data.(error); err != nil {
			m.setError(err)
		}
	}

	return m, nil
}

// stale reports whether a result belongs to a session that is no longer signed in here.
func (m *Model) stale(s *session.Session) bool {
	return m.session == nil || s != m.session
}

func (m *Model) handleAuthKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back):
		return m, tea.Quit
	case key.Matches(msg, m.keys.next):
		if m.username.Focused() {
			m.username.Blur()
			m.password.Focus()
		} else {
			m.password.Blur()
			m.username.Focus()
		}
		return m, nil
	case key.Matches(msg, m.keys.signup):
		m.signingUp = !m.signingUp
		m.clearStatus()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		if m.busy {
			return m, nil
		}
		return m, m.submitAuth()
	}

	var cmd tea.Cmd
	if m.username.Focused() {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMainKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.next):
		if m.mode == ModeTitle {
			m.mode = ModeGenre
		} else {
			m.mode = ModeTitle
		}
		m.setQueryPlaceholder()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.submitQuery()
	case key.Matches(msg, m.keys.add):
		return m, m.addCurrent()
	case key.Matches(msg, m.keys.watchlist):
		return m, m.loadWatchlist()
	case key.Matches(msg, m.keys.personal):
		return m, m.startRecommendations(true, "")
	case key.Matches(msg, m.keys.poster):
		return m, m.openPoster()
	case key.Matches(msg, m.keys.logout):
		m.logout()
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m *Model) handleWatchlistKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.watchlist.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.watchlist, cmd = m.watchlist.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.back):
		m.screen = MainScreen
		m.focusQuery()
		m.clearStatus()
		return m, nil
	case key.Matches(msg, m.keys.remove):
		if item, ok := m.watchlist.SelectedItem().(entryItem); ok {
			return m, m.removeTitle(item.entry.Title)
		}
		return m, nil
	case key.Matches(msg, m.keys.clear):
		return m, m.clearWatchlist()
	case key.Matches(msg, m.keys.personal):
		return m, m.startRecommendations(true, "")
	case key.Matches(msg, m.keys.logout):
		m.logout()
		return m, nil
	}

	var cmd tea.Cmd
	m.watchlist, cmd = m.watchlist.Update(msg)
	return m, cmd
}

func (m *Model) submitAuth() tea.Cmd {
	username := strings.TrimSpace(m.username.Value())
	password := m.password.Value()
	if username == "" {
		m.setStatus(statusWarn, "Enter a username.")
		return nil
	}

	m.busy = true
	if m.signingUp {
		return func() tea.Msg {
			created, err := m.controller.SignUp(username, password)
			return signedUpMsg(created, err)
		}
	}
	return func() tea.Msg {
		s, err := m.controller.Login(username, password)
		return loggedInMsg(s, err)
	}
}

func (m *Model) submitQuery() tea.Cmd {
	value := strings.TrimSpace(m.query.Value())
	if value == "" {
		return nil
	}

	if m.mode == ModeGenre {
		return m.startRecommendations(false, value)
	}
	return m.startSearch(value)
}

// startSearch runs the lookup in the background and streams its progress.
func (m *Model) startSearch(title string) tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan Msg, 1)
	m.progressChan, m.done = progress, done
	m.busy = true
	m.setStatus(statusInfo, "Fetching info...")

	s := m.session
	go func() {
		record, err := m.controller.Search(m.ctx, s, title, progress)
		close(progress)
		done <- searchDoneMsg(title, record, err)
	}()

	return tea.Batch(m.spinner.Tick, m.waitForProgress())
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.done
	if progress == nil {
		return nil
	}

	return func() tea.Msg {
		if update, ok := <-progress; ok {
			return progressUpdateMsg(update)
		}
		return <-done
	}
}

func (m *Model) startRecommendations(personal bool, genre string) tea.Cmd {
	m.busy = true
	m.setStatus(statusInfo, "Finding your picks...")

	s := m.session
	fetch := func() tea.Msg {
		if personal {
			titles, err := m.controller.PersonalRecommendations(m.ctx, s)
			return recommendationsMsg(s, true, titles, err)
		}
		titles, err := m.controller.GenreRecommendations(m.ctx, s, genre)
		return recommendationsMsg(s, false, titles, err)
	}
	return tea.Batch(m.spinner.Tick, fetch)
}

func (m *Model) addCurrent() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		result, title, err := m.controller.AddCurrent(s)
		return addedMsg(result, title, err)
	}
}

func (m *Model) loadWatchlist() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		entries, err := m.controller.Watchlist(s)
		return watchlistLoadedMsg(s, entries, "", err)
	}
}

// reloadWatchlist refreshes the list after a change and keeps message as the status.
func (m *Model) reloadWatchlist(message string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		entries, err := m.controller.Watchlist(s)
		return watchlistLoadedMsg(s, entries, message, err)
	}
}

func (m *Model) removeTitle(title string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		err := m.controller.Remove(s, title)
		return watchlistChangedMsg(fmt.Sprintf("Removed %q.", title), err)
	}
}

func (m *Model) clearWatchlist() tea.Cmd {
	s := m.session
	return func() tea.Msg {
		err := m.controller.Clear(s)
		return watchlistChangedMsg("Watchlist cleared.", err)
	}
}

func (m *Model) openPoster() tea.Cmd {
	record, _ := m.session.SearchResult()
	if record == nil || record.PosterURL == "" {
		m.setStatus(statusWarn, "No poster available.")
		return nil
	}

	url := record.PosterURL
	return func() tea.Msg {
		return posterOpenedMsg(m.openURL(url))
	}
}

func (m *Model) logout() {
	if m.session != nil {
		m.logger.Info("logged out", "user", m.session.User())
		m.controller.Logout(m.session)
	}

	m.session = nil
	m.user = ""
	m.screen = AuthScreen
	m.mode = ModeTitle
	m.setQueryPlaceholder()
	m.query.Reset()
	m.query.Blur()
	m.password.Reset()
	m.password.Blur()
	m.username.Focus()
	m.setStatus(statusInfo, "Logged out.")
}

func (m *Model) focusQuery() {
	m.username.Blur()
	m.password.Blur()
	m.query.Focus()
}

func (m *Model) setQueryPlaceholder() {
	if m.mode == ModeGenre {
		m.query.Placeholder = "Genre: e.g. 'feel-good romantic comedy'"
	} else {
		m.query.Placeholder = "Enter a movie/tv title"
	}
}

func (m *Model) setStatus(kind statusKind, text string) {
	m.status = status{kind: kind, text: text}
}

func (m *Model) setError(err error) {
	m.logger.Error("action failed", "error", err)
	m.setStatus(statusErr, fmt.Sprintf("Error: %v", err))
}

func (m *Model) clearStatus() {
	m.status = status{}
}

// View renders the UI based on the current screen.
func (m *Model) View() string {
	switch m.screen {
	case AuthScreen:
		return m.renderAuth()
	case MainScreen:
		return m.renderMain()
	case WatchlistScreen:
		return m.renderWatchlist()
	default:
		return ""
	}
}

func (m *Model) renderAuth() string {
	action := "Login"
	if m.signingUp {
		action = "Sign Up"
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("reel · " + action))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n%s\n", m.username.View(), m.password.View())
	b.WriteString(m.renderStatus())

	helpKeys := []key.Binding{m.keys.submit, m.keys.next, m.keys.signup, m.keys.quit}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderMain() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("reel · signed in as " + m.user))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s\n", m.renderModes())
	fmt.Fprintf(&b, "%s\n", m.query.View())

	// The session is locked while an action runs, so it is only read when idle.
	if m.busy {
		msg := m.progress.Message
		if msg == "" {
			msg = m.status.text
		}
		fmt.Fprintf(&b, "\n%s %s\n", m.spinner.View(), msg)
	} else {
		b.WriteString(m.renderStatus())
		if panel := m.renderResult(); panel != "" {
			fmt.Fprintf(&b, "\n%s\n", styles.panel.Render(panel))
		}
	}

	helpKeys := []key.Binding{
		m.keys.submit, m.keys.next, m.keys.add, m.keys.watchlist,
		m.keys.personal, m.keys.poster, m.keys.logout, m.keys.quit,
	}
	fmt.Fprintf(&b, "\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderModes() string {
	var tabs []string
	for _, mode := range []Mode{ModeTitle, ModeGenre} {
		if mode == m.mode {
			tabs = append(tabs, styles.label.Render("["+mode.String()+"]"))
		} else {
			tabs = append(tabs, styles.help.Render(" "+mode.String()+" "))
		}
	}
	return strings.Join(tabs, " ")
}

// renderResult draws whichever view is live on the session.
func (m *Model) renderResult() string {
	switch m.session.View() {
	case session.ViewSearch:
		record, _ := m.session.SearchResult()
		if record == nil {
			return ""
		}
		return strings.TrimRight(formatter.RecordToText(record), "\n")
	case session.ViewGenre:
		return styles.label.Render("Recommended Movies:") + "\n" +
			strings.TrimRight(bulleted(m.session.GenreRecommendations()), "\n")
	case session.ViewPersonal:
		recs := m.session.PersonalRecommendations()
		if len(recs) == 0 {
			return ""
		}
		return styles.label.Render("Personalized Recommendations") + "\n" +
			strings.TrimRight(bulleted(recs), "\n")
	default:
		return ""
	}
}

func (m *Model) renderWatchlist() string {
	helpKeys := []key.Binding{m.keys.remove, m.keys.clear, m.keys.personal, m.keys.back, m.keys.quit}
	return fmt.Sprintf("%s\n%s\n%s", m.watchlist.View(), m.renderStatus(), m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderStatus() string {
	if m.status.text == "" {
		return ""
	}
	return "\n" + m.status.render() + "\n"
}

func bulleted(items []string) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "• %s\n", item)
	}
	return b.String()
}

// Run starts the TUI on the alternate screen and blocks until it exits.
func Run(ctx context.Context, controller *session.Controller, logger *log.Logger) error {
	m := NewModel(ctx, controller, logger)
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}
