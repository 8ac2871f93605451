// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/reel/internal/formatter"
	"github.com/urfave/cli/v3"
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging",
		},
	}
}

// userFlags identify the account a user-scoped command acts for.
func userFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "user",
			Aliases:  []string{"u"},
			Usage:    "Username",
			Sources:  cli.EnvVars("REEL_USER"),
			Required: true,
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Password",
			Sources: cli.EnvVars("REEL_PASSWORD"),
		},
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   defaultConfigPath,
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

func formatNames() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// setupCommand handles setup operations for the database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
			{
				Name:   "config",
				Usage:  "Write a config.toml template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:  "status",
				Usage: "Show applied and pending migrations",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{Name: "account", Usage: "Also report whether this username is registered"},
				},
				Action: r.SetupStatus,
			},
			{
				Name:   "rollback",
				Usage:  "Revert the most recently applied migration",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupRollback,
			},
		},
	}
}

// accountCommands handle sign-up and credential checks.
func accountCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "signup",
			Usage:  "Create an account",
			Flags:  userFlags(),
			Action: r.SignUp,
		},
		{
			Name:   "login",
			Usage:  "Verify credentials and show the session",
			Flags:  flags(userFlags(), outputFlags()),
			Action: r.Login,
		},
	}
}

// searchCommands handle title lookup and recommendations.
func searchCommands(r *Runner) []*cli.Command {
	return []*cli.Command{
		{
			Name:      "search",
			Usage:     "Look up a movie or TV title",
			Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
			Flags:     flags(userFlags(), outputFlags()),
			Action:    r.Search,
		},
		{
			Name:      "availability",
			Aliases:   []string{"where"},
			Usage:     "Show where a title streams",
			Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
			Flags:     outputFlags(),
			Action:    r.Availability,
		},
		{
			Name:    "recommend",
			Aliases: []string{"recs"},
			Usage:   "Get title recommendations",
			Commands: []*cli.Command{
				{
					Name:      "genre",
					Usage:     "Recommend titles for a genre or theme",
					Arguments: []cli.Argument{&cli.StringArg{Name: "genre"}},
					Flags:     flags(userFlags(), outputFlags()),
					Action:    r.RecommendGenre,
				},
				{
					Name:   "personal",
					Usage:  "Recommend titles based on your watchlist",
					Flags:  flags(userFlags(), outputFlags()),
					Action: r.RecommendPersonal,
				},
			},
		},
	}
}

// watchlistCommand handles saved titles.
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Manage your watchlist",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved titles",
				Flags:  flags(userFlags(), outputFlags()),
				Action: r.WatchlistList,
			},
			{
				Name:      "add",
				Usage:     "Look up a title and save it",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Flags:     userFlags(),
				Action:    r.WatchlistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a saved title",
				Arguments: []cli.Argument{&cli.StringArg{Name: "title"}},
				Flags:     userFlags(),
				Action:    r.WatchlistRemove,
			},
			{
				Name:   "clear",
				Usage:  "Remove every saved title",
				Flags:  userFlags(),
				Action: r.WatchlistClear,
			},
			{
				Name:  "export",
				Usage: "Export the watchlist to a file",
				Flags: flags(userFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (" + formatNames() + ")",
						Value:   string(formatter.FormatCSV),
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path (default: {user}_watchlist.{ext})",
					},
				}),
				Action: r.WatchlistExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal UI",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where to write logs while the TUI owns the screen",
				Value: "./tmp/reel-tui.log",
			},
		},
		Action: r.TUI,
	}
}

// serveCommand returns the HTTP API command.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (default from config)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (default from config)",
			},
		},
		Action: r.Serve,
	}
}
