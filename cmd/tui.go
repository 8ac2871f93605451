package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reel/internal/shared"
	"github.com/desertthunder/reel/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	if err := r.connect(); err != nil {
		return err
	}

	return ui.Run(ctx, r.controller, fileLogger)
}
