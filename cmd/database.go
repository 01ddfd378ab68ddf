package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/movierec/internal/formatter"
	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/shared"
	"github.com/urfave/cli/v3"
)

// InitConfig writes the embedded example configuration to the given path, or to the --config path.
func (r *Runner) InitConfig(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		path = r.configPath
	}

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config file created", "path", path)
	return r.writePlain("✓ Wrote %s\n", path)
}

// InitDB creates every table by running pending migrations. Running it twice is a no-op.
func (r *Runner) InitDB(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	driver := r.config.Database.Driver
	r.logger.Info("running database migrations", "driver", driver)
	if err := shared.RunMigrations(db, driver); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	versions, err := shared.AppliedMigrations(db)
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", r.config.Database.DSN)
	return r.writePlain("✓ Database initialized (%d migrations applied)\n", len(versions))
}

// DestroyDB drops every table by rolling back all migrations.
func (r *Runner) DestroyDB(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	driver := r.config.Database.Driver
	r.logger.Warn("dropping every table", "driver", driver)
	n, err := shared.RollbackAll(db, driver)
	if err != nil {
		return fmt.Errorf("failed to destroy database after %d rollbacks: %w", n, err)
	}

	return r.writePlain("✓ Database destroyed (%d migrations rolled back)\n", n)
}

// Stats prints the applied migrations and row counts.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	driver := r.config.Database.Driver
	stats := formatter.Stats{Driver: driver}

	if stats.Migrations, err = shared.AppliedMigrations(db); err != nil {
		return err
	}

	users := repositories.NewUserRepository(db, driver)
	movies := repositories.NewMovieRepository(db, driver)

	if stats.Movies, err = movies.Count(ctx); err != nil {
		return err
	}
	if stats.Users, err = users.Count(ctx); err != nil {
		return err
	}
	if stats.Follows, err = users.CountFollows(ctx); err != nil {
		return err
	}

	if cmd.Bool("json") {
		out, err := formatter.ExportStatsToJSON(stats)
		if err != nil {
			return err
		}
		return r.writePlain("%s\n", out)
	}

	out, err := formatter.ExportStatsToText(stats)
	if err != nil {
		return err
	}
	return r.writePlain("%s", out)
}
