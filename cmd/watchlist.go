package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reel/internal/formatter"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/urfave/cli/v3"
)

// WatchlistList prints the user's saved titles in insertion order.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	entries, err := r.controller.Watchlist(s)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}
	if len(entries) == 0 {
		return r.writePlain("Your watchlist is empty.\n")
	}

	data, err := formatter.ExportToText(&formatter.Watchlist{Username: s.User(), Entries: entries})
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// WatchlistAdd looks up a title and saves the result.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	title, err := requiredArg(cmd, "title")
	if err != nil {
		return err
	}

	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	record, err := r.lookup(ctx, s, title, true)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s", shared.ErrTitleNotFound, title)
	}

	result, saved, err := r.controller.AddCurrent(s)
	if err != nil {
		return err
	}

	if result == models.AlreadyExists {
		r.logger.Warn("already in watchlist", "title", saved)
		return r.writePlain("Already in your watchlist: %s\n", saved)
	}
	return r.writePlain("✓ Added to watchlist: %s\n", saved)
}

// WatchlistRemove deletes one saved title. Removing an absent title is not an error.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	title, err := requiredArg(cmd, "title")
	if err != nil {
		return err
	}

	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	saved, err := r.controller.Saved(s, title)
	if err != nil {
		return err
	}
	if !saved {
		return r.writePlain("Not in your watchlist: %s\n", title)
	}

	if err := r.controller.Remove(s, title); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s\n", title)
}

// WatchlistClear deletes every saved title for the user.
func (r *Runner) WatchlistClear(ctx context.Context, cmd *cli.Command) error {
	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	if err := r.controller.Clear(s); err != nil {
		return err
	}
	return r.writePlain("✓ Watchlist cleared\n")
}

// WatchlistExport writes the watchlist to a file in the chosen format.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	entries, err := r.controller.Watchlist(s)
	if err != nil {
		return err
	}

	path, err := formatter.WriteExport(&formatter.Watchlist{Username: s.User(), Entries: entries}, format, cmd.String("output"))
	if err != nil {
		return err
	}

	r.logger.Info("watchlist exported", "user", s.User(), "format", format, "path", path)
	return r.writePlain("✓ Exported %d titles to %s\n", len(entries), path)
}
