package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/movierec/internal/formatter"
	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/shared"
	"github.com/desertthunder/movierec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// networkOptions maps the [network] and [security] sections onto generator options.
func networkOptions(config *shared.Config, seed uint64) tasks.NetworkOptions {
	return tasks.NetworkOptions{
		SeedAccounts: config.Network.SeedAccounts,
		FakeAccounts: config.Network.FakeAccounts,
		Iterations:   config.Network.Iterations,
		MaxFollows:   config.Network.MaxFollows,
		EmailDomain:  config.Network.EmailDomain,
		BcryptCost:   config.Security.BcryptCost,
		Seed:         seed,
	}
}

// GenerateUserNetwork replaces every user with the demo accounts and wires random follows.
//
// Running out of users to wire is logged as a warning; the accounts created so far are kept.
func (r *Runner) GenerateUserNetwork(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	seed := cmd.Int("seed")
	if seed < 0 {
		return fmt.Errorf("%w: seed must not be negative", shared.ErrInvalidArgument)
	}

	users := repositories.NewUserRepository(db, r.config.Database.Driver)
	generator := tasks.NewNetworkGenerator(users, networkOptions(r.config, uint64(seed)))

	r.logger.Info("generating user network",
		"seed_accounts", r.config.Network.SeedAccounts, "fake_accounts", r.config.Network.FakeAccounts)

	progress, wait := r.trackProgress()
	result, err := generator.Generate(ctx, progress)
	wait()
	switch {
	case errors.Is(err, shared.ErrNoCandidates):
		r.logger.Warn("stopped wiring follows early", "error", err)
	case err != nil:
		return fmt.Errorf("failed to generate user network: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writePlain("✓ Created %d users (%d seed, %d fake); %d users follow %d others in total\n",
		result.SeedUsers+result.FakeUsers, result.SeedUsers, result.FakeUsers, result.WiredUsers, result.FollowEdges)
}

// ExportNetwork writes every user with the users they follow in the requested format.
func (r *Runner) ExportNetwork(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	users, err := repositories.NewUserRepository(db, r.config.Database.Driver).List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	data, err := formatter.ExportNetwork(users, format)
	if err != nil {
		return err
	}
	return r.writeExport(data, cmd.String("output"), "users", len(users))
}
