package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/desertthunder/reel/internal/repositories"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/urfave/cli/v3"
)

// loadSetupConfig reads the --config file, creating it from the template when missing.
func (r *Runner) loadSetupConfig(configPath string) *shared.Config {
	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			config = shared.DefaultConfig()
		}
	}

	if err := config.ApplyEnv(r.logger); err != nil {
		r.logger.Warn("environment overrides produced an invalid config, using defaults", "error", err)
		config = shared.DefaultConfig()
	}
	return config
}

// setupDB opens the database from the --config file without migrating it.
func (r *Runner) setupDB(cmd *cli.Command) (*sql.DB, *shared.Config, error) {
	config := r.loadSetupConfig(cmd.String("config"))

	if r.db != nil {
		return r.db, config, nil
	}

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.Path, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
	r.db = db
	return db, config, nil
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	db, config, err := r.setupDB(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("running database migrations", "path", config.Database.Path)
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return r.writePlain("✓ Database ready at %s\n", config.Database.Path)
}

// SetupConfig writes the config template to --config.
func (r *Runner) SetupConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Add your TMDB, SerpAPI and Anthropic keys (or set TMDB_API_KEY, SERPAPI_KEY, ANTHROPIC_API_KEY)\n")
	r.writePlain("2. Run 'reel setup database' to create the watchlist database\n")
	return nil
}

// SetupStatus prints each migration and whether it has been applied.
func (r *Runner) SetupStatus(ctx context.Context, cmd *cli.Command) error {
	db, _, err := r.setupDB(cmd)
	if err != nil {
		return err
	}

	statuses, err := shared.MigrationStatuses(db)
	if err != nil {
		return err
	}

	r.writePlainHeader("Migrations")
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		r.writePlain("%04d %-24s %s\n", s.Version, s.Name, state)
	}

	if account := cmd.String("account"); account != "" {
		found, err := repositories.NewUserRepository(db).Exists(account)
		if err != nil {
			return err
		}
		state := "not registered"
		if found {
			state = "registered"
		}
		r.writePlain("\nAccount %s: %s\n", account, state)
	}
	return nil
}

// SetupRollback reverts the newest applied migration.
func (r *Runner) SetupRollback(ctx context.Context, cmd *cli.Command) error {
	db, _, err := r.setupDB(cmd)
	if err != nil {
		return err
	}

	if err := shared.RollbackMigration(db); err != nil {
		return err
	}
	return r.writePlain("✓ Rolled back the latest migration\n")
}
