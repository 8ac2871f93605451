package session

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
)

// Credentials is the credential store used for signup and login.
//
// Implemented by repositories.UserRepository.
type Credentials interface {
	Register(username, password string) (bool, error)
	Authenticate(username, password string) (bool, error)
}

// Watchlist is the watchlist store used for saved titles.
//
// Implemented by repositories.WatchlistRepository.
type Watchlist interface {
	Exists(username, title string) (bool, error)
	Add(entry *models.WatchlistEntry) (models.AddResult, error)
	List(username string) ([]models.WatchlistEntry, error)
	Remove(username, title string) error
	Clear(username string) error
}

// Controller routes user actions to the stores and the pipeline and records results on the
// acting [Session].
type Controller struct {
	users     Credentials
	watchlist Watchlist
	pipeline  tasks.Enricher
	logger    *log.Logger
}

// NewController creates a Controller. A nil logger discards output.
func NewController(users Credentials, watchlist Watchlist, pipeline tasks.Enricher, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Controller{users: users, watchlist: watchlist, pipeline: pipeline, logger: logger}
}

// SignUp registers username. Returns false with a nil error when the name is taken.
func (c *Controller) SignUp(username, password string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, fmt.Errorf("%w: username is required", shared.ErrInvalidInput)
	}

	ok, err := c.users.Register(username, password)
	if err != nil {
		return false, err
	}
	if ok {
		c.logger.Info("account created", "user", username)
	} else {
		c.logger.Warn("signup rejected, username taken", "user", username)
	}
	return ok, nil
}

// Login verifies credentials and starts a new authenticated session.
func (c *Controller) Login(username, password string) (*Session, error) {
	ok, err := c.users.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		c.logger.Warn("login failed", "user", username)
		return nil, shared.ErrInvalidCredentials
	}

	s := newSession(username)
	c.log(s).Info("logged in")
	return s, nil
}

// Logout clears every field of s. Logging out twice is harmless.
func (c *Controller) Logout(s *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.authenticated {
		c.log(s).Info("logged out")
	}
	s.reset()
}

// log returns the controller logger tagged with the session's user and ID.
func (c *Controller) log(s *Session) *log.Logger {
	return shared.WithLogger(c.logger, "user", s.user, "session", s.id)
}

// begin locks s and checks it is authenticated. The caller must unlock s.mu.
func begin(s *Session) error {
	if s == nil {
		return shared.ErrNotAuthenticated
	}
	s.mu.Lock()
	if !s.authenticated {
		s.mu.Unlock()
		return shared.ErrNotAuthenticated
	}
	return nil
}

func requireInput(name, value string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", fmt.Errorf("%w: %s is required", shared.ErrInvalidInput, name)
	}
	return v, nil
}

// Search looks up title and makes the result the live view. A nil record means no match and
// is still stored. On error the previous view is kept.
func (c *Controller) Search(ctx context.Context, s *Session, title string, progress chan<- tasks.ProgressUpdate) (*models.EnrichedRecord, error) {
	if err := begin(s); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	title, err := requireInput("title", title)
	if err != nil {
		return nil, err
	}

	record, err := c.pipeline.LookupTitle(ctx, progress, title)
	if err != nil {
		c.log(s).Error("search failed", "title", title, "error", err)
		return nil, err
	}

	s.showSearch(title, record)
	return record, nil
}

// GenreRecommendations asks for titles in genre and makes them the live view.
func (c *Controller) GenreRecommendations(ctx context.Context, s *Session, genre string) ([]string, error) {
	if err := begin(s); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	genre, err := requireInput("genre", genre)
	if err != nil {
		return nil, err
	}

	recs, err := c.pipeline.RecommendByGenre(ctx, genre)
	if err != nil {
		c.log(s).Error("genre recommendations failed", "genre", genre, "error", err)
		return nil, err
	}

	s.showGenre(genre, recs)
	return s.genreRecs, nil
}

// PersonalRecommendations asks for titles based on the user's watchlist and makes them the
// live view. An empty watchlist yields an empty list.
func (c *Controller) PersonalRecommendations(ctx context.Context, s *Session) ([]string, error) {
	if err := begin(s); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	recs, err := c.pipeline.RecommendByHistory(ctx, s.user)
	if err != nil {
		c.log(s).Error("personal recommendations failed", "error", err)
		return nil, err
	}

	s.showPersonal(recs)
	return s.personalRecs, nil
}

// AddCurrent saves the live search result to the user's watchlist and returns the saved title.
func (c *Controller) AddCurrent(s *Session) (models.AddResult, string, error) {
	if err := begin(s); err != nil {
		return models.Added, "", err
	}
	defer s.mu.Unlock()

	if !s.searched || s.result == nil {
		return models.Added, "", shared.ErrNoSearchResult
	}

	title := s.result.Title
	result, err := c.watchlist.Add(s.result.Entry(s.user))
	if err != nil {
		return models.Added, title, err
	}

	c.log(s).Info("watchlist add", "title", title, "result", result)
	return result, title, nil
}

// Watchlist lists the user's saved titles. The live view is unchanged.
func (c *Controller) Watchlist(s *Session) ([]models.WatchlistEntry, error) {
	if err := begin(s); err != nil {
		return nil, err
	}
	defer s.mu.Unlock()

	return c.watchlist.List(s.user)
}

// Saved reports whether title is in the user's watchlist.
func (c *Controller) Saved(s *Session, title string) (bool, error) {
	if err := begin(s); err != nil {
		return false, err
	}
	defer s.mu.Unlock()

	title, err := requireInput("title", title)
	if err != nil {
		return false, err
	}
	return c.watchlist.Exists(s.user, title)
}

// Remove deletes title from the user's watchlist. The live view is unchanged.
func (c *Controller) Remove(s *Session, title string) error {
	if err := begin(s); err != nil {
		return err
	}
	defer s.mu.Unlock()

	title, err := requireInput("title", title)
	if err != nil {
		return err
	}

	if err := c.watchlist.Remove(s.user, title); err != nil {
		return err
	}
	c.log(s).Info("watchlist remove", "title", title)
	return nil
}

// Clear empties the user's watchlist. The live view is unchanged.
func (c *Controller) Clear(s *Session) error {
	if err := begin(s); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if err := c.watchlist.Clear(s.user); err != nil {
		return err
	}
	c.log(s).Info("watchlist cleared")
	return nil
}
