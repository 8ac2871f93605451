package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/reel/internal/shared"
	"github.com/urfave/cli/v3"
)

// SignUp registers the --user account.
func (r *Runner) SignUp(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	user := cmd.String("user")
	created, err := r.controller.SignUp(user, cmd.String("password"))
	if err != nil {
		return err
	}
	if !created {
		return fmt.Errorf("%w: %s", shared.ErrUsernameTaken, user)
	}

	return r.writePlain("✓ Account created! Please log in.\n")
}

// Login checks the --user credentials and prints the resulting session.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	s, err := r.login(cmd)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(s.Snapshot(), cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Login successful! Session %s for %s\n", s.ID(), s.User())
}
