package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/reel/internal/repositories"
	"github.com/desertthunder/reel/internal/services"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and provider clients are opened on first use so that commands like
// `setup config` work without either.
type Runner struct {
	config     *shared.Config
	configPath string
	logger     *log.Logger
	output     io.Writer

	db         *sql.DB
	metadata   services.MetadataProvider
	search     services.WebSearcher
	model      services.LanguageModel
	pipeline   *tasks.Pipeline
	controller *session.Controller
}

// RunnerOpts contains configuration options for creating a Runner.
//
// DB and the providers are optional; when nil they are built from Config.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Logger     *log.Logger
	Output     io.Writer
	DB         *sql.DB
	Metadata   services.MetadataProvider
	Search     services.WebSearcher
	Model      services.LanguageModel
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		logger:     opts.Logger,
		output:     opts.Output,
		db:         opts.DB,
		metadata:   opts.Metadata,
		search:     opts.Search,
		model:      opts.Model,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, watchlistCommand, tuiCommand, serveCommand,
	} {
		commands = append(commands, fn(r))
	}
	commands = append(commands, accountCommands(r)...)
	commands = append(commands, searchCommands(r)...)

	return commands
}

func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}
	return ctx, nil
}

// SetLogger replaces the logger. Must be called before the controller is built to reach it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Close releases the database if the runner opened one.
func (r *Runner) Close() {
	if r.db != nil {
		r.db.Close()
		r.db = nil
	}
}

// connect opens the database, builds whichever provider clients have credentials, and wires
// the pipeline and controller.
func (r *Runner) connect() error {
	if r.controller != nil {
		return nil
	}

	if r.db == nil {
		db, err := shared.OpenDatabase(r.config.Database)
		if err != nil {
			return err
		}
		r.db = db
	}

	r.connectProviders()

	users := repositories.NewUserRepository(r.db)
	watchlist := repositories.NewWatchlistRepository(r.db)
	r.pipeline = tasks.NewPipeline(r.metadata, r.search, r.model, watchlist, r.logger)
	r.controller = session.NewController(users, watchlist, r.pipeline, r.logger)
	return nil
}

// connectProviders leaves a provider unset when its credentials are missing; the pipeline
// reports it as unavailable on first use.
func (r *Runner) connectProviders() {
	creds := r.config.Credentials

	if r.metadata == nil {
		if svc, err := services.NewTMDBService(creds.TMDB, r.config.HTTP); err != nil {
			r.logger.Debug("metadata provider disabled", "error", err)
		} else {
			r.metadata = svc
		}
	}
	if r.search == nil {
		if svc, err := services.NewSerpAPIService(creds.SerpAPI, r.config.HTTP); err != nil {
			r.logger.Debug("web search disabled", "error", err)
		} else {
			r.search = svc
		}
	}
	if r.model == nil {
		if svc, err := services.NewAnthropicService(creds.Anthropic, r.config.HTTP); err != nil {
			r.logger.Debug("language model disabled", "error", err)
		} else {
			r.model = svc
		}
	}
}

// login opens a fresh session for the --user and --password flags.
func (r *Runner) login(cmd *cli.Command) (*session.Session, error) {
	if err := r.connect(); err != nil {
		return nil, err
	}
	return r.controller.Login(cmd.String("user"), cmd.String("password"))
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
