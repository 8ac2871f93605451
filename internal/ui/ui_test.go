package ui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/repositories"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
	tu "github.com/desertthunder/reel/internal/testing"
)

func setupModel(t *testing.T) *Model {
	t.Helper()

	db, err := shared.NewDatabase(shared.MemoryDatabase)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	rating := 8.0
	meta := tu.NewMockMetadataProvider()
	meta.AddTitle("Dune",
		models.TitleMatch{ID: 438631, Title: "Dune", MediaType: models.MediaMovie},
		models.TitleDetails{Title: "Dune", Overview: "Spice must flow.", Rating: &rating, PosterPath: "/dune.jpg"},
		"Arrival",
	)
	search := &tu.MockWebSearcher{Results: []models.SearchResult{{Snippet: "Dune streams on Max."}}}
	model := &tu.MockLanguageModel{Reply: "Max, Netflix"}

	watchlist := repositories.NewWatchlistRepository(db)
	pipeline := tasks.NewPipeline(meta, search, model, watchlist, nil)
	controller := session.NewController(repositories.NewUserRepository(db), watchlist, pipeline, nil)

	m := NewModel(context.Background(), controller, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// run executes cmd and feeds every message it produces back into m until none are left.
// Spinner ticks are dropped so the loop terminates.
func run(m *Model, cmd tea.Cmd) {
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}

		switch msg := c().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case Msg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func press(m *Model, k tea.KeyType) {
	_, cmd := m.Update(tea.KeyMsg{Type: k})
	run(m, cmd)
}

func typeText(m *Model, s string) {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
	run(m, cmd)
}

func signIn(t *testing.T, m *Model, user, password string) {
	t.Helper()

	press(m, tea.KeyCtrlN)
	typeText(m, user)
	press(m, tea.KeyTab)
	typeText(m, password)
	press(m, tea.KeyEnter)

	if m.signingUp {
		t.Fatalf("expected sign-up to finish, status %q", m.status.text)
	}

	// Focus stays on the cleared password field after sign-up.
	typeText(m, password)
	press(m, tea.KeyEnter)

	if m.screen != MainScreen {
		t.Fatalf("expected main screen after login, status %q", m.status.text)
	}
}

func TestAuthScreen(t *testing.T) {
	t.Run("sign up then log in", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")

		if m.session.User() != "alice" {
			t.Errorf("expected session for alice, got %q", m.session.User())
		}
		if m.status.text != "Login successful!" {
			t.Errorf("unexpected status %q", m.status.text)
		}
		if !m.query.Focused() {
			t.Error("expected query input to have focus")
		}
	})

	t.Run("duplicate sign up warns", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")
		press(m, tea.KeyCtrlL)

		// The username field keeps "alice" after logout.
		press(m, tea.KeyCtrlN)
		press(m, tea.KeyTab)
		typeText(m, "other")
		press(m, tea.KeyEnter)

		if m.status.kind != statusWarn || m.status.text != "Username already exists." {
			t.Errorf("unexpected status %+v", m.status)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		m := setupModel(t)
		typeText(m, "ghost")
		press(m, tea.KeyTab)
		typeText(m, "nope")
		press(m, tea.KeyEnter)

		if m.screen != AuthScreen {
			t.Error("expected to stay on auth screen")
		}
		if m.status.text != "Invalid credentials." {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})

	t.Run("empty username", func(t *testing.T) {
		m := setupModel(t)
		press(m, tea.KeyEnter)

		if m.busy || m.status.kind != statusWarn {
			t.Errorf("expected warning without work, got %+v", m.status)
		}
	})

	t.Run("view shows mode", func(t *testing.T) {
		m := setupModel(t)
		if !strings.Contains(m.View(), "Login") {
			t.Error("expected login title")
		}
		press(m, tea.KeyCtrlN)
		if !strings.Contains(m.View(), "Sign Up") {
			t.Error("expected sign up title")
		}
	})
}

func TestMainScreen(t *testing.T) {
	t.Run("search and add", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")

		typeText(m, "Dune")
		press(m, tea.KeyEnter)

		if m.busy {
			t.Fatal("expected search to finish")
		}
		if m.session.View() != session.ViewSearch {
			t.Fatalf("expected search view, got %v", m.session.View())
		}
		view := m.View()
		for _, want := range []string{"Dune", "Rating: 8.0", "Max, Netflix"} {
			if !strings.Contains(view, want) {
				t.Errorf("expected view to contain %q", want)
			}
		}

		press(m, tea.KeyCtrlA)
		if m.status.text != "Added to watchlist!" {
			t.Errorf("unexpected status %q", m.status.text)
		}

		press(m, tea.KeyCtrlA)
		if m.status.text != "Already in your watchlist." {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})

	t.Run("no match", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")

		typeText(m, "zzzz")
		press(m, tea.KeyEnter)

		if !strings.Contains(m.status.text, "No match found") {
			t.Errorf("unexpected status %q", m.status.text)
		}

		press(m, tea.KeyCtrlA)
		if m.status.text != "Search for a title first." {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})

	t.Run("genre mode", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")

		press(m, tea.KeyTab)
		if m.mode != ModeGenre {
			t.Fatal("expected genre mode after tab")
		}

		typeText(m, "space opera")
		press(m, tea.KeyEnter)

		if m.session.View() != session.ViewGenre {
			t.Fatalf("expected genre view, got %v", m.session.View())
		}
		if !strings.Contains(m.View(), "Recommended Movies:") {
			t.Error("expected recommendations panel")
		}
	})

	t.Run("personal recommendations on empty watchlist", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")

		press(m, tea.KeyCtrlR)
		if m.status.text != "Your watchlist is empty." {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})

	t.Run("open poster", func(t *testing.T) {
		m := setupModel(t)
		var opened string
		m.openURL = func(url string) error {
			opened = url
			return nil
		}
		signIn(t, m, "alice", "pw1")

		press(m, tea.KeyCtrlO)
		if opened != "" || m.status.kind != statusWarn {
			t.Errorf("expected warning before any search, opened %q", opened)
		}

		typeText(m, "Dune")
		press(m, tea.KeyEnter)
		press(m, tea.KeyCtrlO)

		if opened != "https://image.tmdb.org/t/p/w500/dune.jpg" {
			t.Errorf("unexpected poster url %q", opened)
		}
	})

	t.Run("logout", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")
		s := m.session

		press(m, tea.KeyCtrlL)

		if m.screen != AuthScreen || m.session != nil {
			t.Error("expected auth screen with no session")
		}
		if s.Authenticated() {
			t.Error("expected previous session to be logged out")
		}
	})
}

func TestWatchlistScreen(t *testing.T) {
	setupWithEntry := func(t *testing.T) *Model {
		m := setupModel(t)
		signIn(t, m, "alice", "pw1")
		typeText(m, "Dune")
		press(m, tea.KeyEnter)
		press(m, tea.KeyCtrlA)
		press(m, tea.KeyCtrlW)
		return m
	}

	t.Run("list", func(t *testing.T) {
		m := setupWithEntry(t)
		if m.screen != WatchlistScreen {
			t.Fatal("expected watchlist screen")
		}
		if len(m.watchlist.Items()) != 1 {
			t.Errorf("expected 1 item, got %d", len(m.watchlist.Items()))
		}
	})

	t.Run("remove", func(t *testing.T) {
		m := setupWithEntry(t)
		typeText(m, "d")

		if len(m.watchlist.Items()) != 0 {
			t.Errorf("expected empty list after remove, got %d", len(m.watchlist.Items()))
		}
		if m.status.text != `Removed "Dune".` {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})

	t.Run("clear", func(t *testing.T) {
		m := setupWithEntry(t)
		typeText(m, "C")

		if len(m.watchlist.Items()) != 0 {
			t.Errorf("expected empty list after clear, got %d", len(m.watchlist.Items()))
		}
	})

	t.Run("back keeps live result", func(t *testing.T) {
		m := setupWithEntry(t)
		press(m, tea.KeyEsc)

		if m.screen != MainScreen {
			t.Error("expected main screen")
		}
		if record, _ := m.session.SearchResult(); record == nil || record.Title != "Dune" {
			t.Error("expected search result to survive watchlist view")
		}
	})

	t.Run("logout waits for pending recommendations", func(t *testing.T) {
		m := setupWithEntry(t)
		_, pending := m.Update(tea.KeyMsg{Type: tea.KeyCtrlR})
		if !m.busy {
			t.Fatal("expected recommendations to be in flight")
		}

		press(m, tea.KeyCtrlL)
		if m.screen != WatchlistScreen || m.session == nil {
			t.Fatal("expected logout to be ignored while busy")
		}

		run(m, pending)
		if m.screen != MainScreen || m.session.View() != session.ViewPersonal {
			t.Errorf("expected personal recommendations on main screen, got screen %d", m.screen)
		}

		press(m, tea.KeyCtrlL)
		if m.screen != AuthScreen || m.session != nil {
			t.Error("expected logout once idle")
		}
	})

	t.Run("results for a logged out session are dropped", func(t *testing.T) {
		m := setupWithEntry(t)
		old := m.session
		press(m, tea.KeyCtrlL)

		m.Update(recommendationsMsg(old, true, []string{"Arrival"}, nil))
		m.Update(watchlistLoadedMsg(old, nil, "", nil))

		if m.screen != AuthScreen || m.session != nil {
			t.Errorf("expected to stay logged out, got screen %d", m.screen)
		}
		if m.status.text != "Logged out." {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})

	t.Run("empty", func(t *testing.T) {
		m := setupModel(t)
		signIn(t, m, "bob", "pw2")
		press(m, tea.KeyCtrlW)

		if m.status.text != "Your watchlist is empty." {
			t.Errorf("unexpected status %q", m.status.text)
		}
	})
}

func TestEntryItem(t *testing.T) {
	item := entryItem{entry: models.WatchlistEntry{Title: "Dune", Rating: "8.0", AvailableOn: "Max"}}

	if item.FilterValue() != "Dune" || item.Title() != "Dune" {
		t.Errorf("unexpected title %q", item.Title())
	}
	if item.Description() != "Rating: 8.0 • Available on: Max" {
		t.Errorf("unexpected description %q", item.Description())
	}
}
