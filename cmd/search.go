package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/reel/internal/formatter"
	"github.com/desertthunder/reel/internal/models"
	"github.com/desertthunder/reel/internal/session"
	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/tasks"
	"github.com/urfave/cli/v3"
)

func requiredArg(cmd *cli.Command, name string) (string, error) {
	v := strings.TrimSpace(cmd.StringArg(name))
	if v == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	return v, nil
}

// lookup runs a title search on s, printing progress unless quiet is set.
func (r *Runner) lookup(ctx context.Context, s *session.Session, title string, quiet bool) (*models.EnrichedRecord, error) {
	progressCh := make(chan tasks.ProgressUpdate, 10)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			if quiet {
				r.logger.Debug("lookup progress", "phase", update.Phase, "step", update.Step, "message", update.Message)
				continue
			}
			r.writePlain("[%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}()

	record, err := r.controller.Search(ctx, s, title, progressCh)
	close(progressCh)
	<-done

	return record, err
}

// Search looks up a title and prints the enriched record.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	title, err := requiredArg(cmd, "title")
	if err != nil {
		return err
	}

	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	record, err := r.lookup(ctx, s, title, asJSON)
	if err != nil {
		return err
	}

	if asJSON {
		return r.writeJSON(record, cmd.Bool("pretty"))
	}
	if record == nil {
		return r.writePlainln("No match found for %q.", title)
	}

	r.writePlain("\n")
	r.writePlainHeader(record.Title)
	return r.writePlain("%s", formatter.RecordToText(record))
}

// Availability prints the streaming platforms for a title. No account is needed.
func (r *Runner) Availability(ctx context.Context, cmd *cli.Command) error {
	title, err := requiredArg(cmd, "title")
	if err != nil {
		return err
	}
	if err := r.connect(); err != nil {
		return err
	}

	platforms, err := r.pipeline.ResolveAvailability(ctx, title)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(platforms, cmd.Bool("pretty"))
	}
	return r.writePlain("Available on: %s\n", strings.Join(platforms, models.PlatformSeparator))
}

// RecommendGenre prints titles for a genre or theme.
func (r *Runner) RecommendGenre(ctx context.Context, cmd *cli.Command) error {
	genre, err := requiredArg(cmd, "genre")
	if err != nil {
		return err
	}

	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	titles, err := r.controller.GenreRecommendations(ctx, s, genre)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(titles, cmd.Bool("pretty"))
	}
	r.writePlainHeader("Recommended Movies")
	return r.writePlain("%s", formatter.NumberedList(titles))
}

// RecommendPersonal prints titles based on the user's watchlist.
func (r *Runner) RecommendPersonal(ctx context.Context, cmd *cli.Command) error {
	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	titles, err := r.controller.PersonalRecommendations(ctx, s)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(titles, cmd.Bool("pretty"))
	}
	if len(titles) == 0 {
		return r.writePlain("Your watchlist is empty. Add a few titles to get personalized recommendations.\n")
	}
	r.writePlainHeader("Personalized Recommendations")
	return r.writePlain("%s", formatter.NumberedList(titles))
}
