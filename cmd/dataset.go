package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/movierec/internal/formatter"
	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/services"
	"github.com/desertthunder/movierec/internal/shared"
	"github.com/desertthunder/movierec/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ImportMovieDataset replaces every stored movie with the rows of the dataset at the path argument.
func (r *Runner) ImportMovieDataset(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: dataset path", shared.ErrMissingArgument)
	}

	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	member := r.config.Dataset.Member
	if m := cmd.String("member"); m != "" {
		member = m
	}

	movies := repositories.NewMovieRepository(db, r.config.Database.Driver).WithBatchSize(r.config.Dataset.BatchSize)
	fetcher := services.NewDatasetFetcher(r.httpClient, "")
	importer := tasks.NewDatasetImporter(movies, fetcher, member)

	r.logger.Info("importing movie dataset", "source", path)

	progress, wait := r.trackProgress()
	result, err := importer.Import(ctx, path, progress)
	wait()
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.logger.Info("import complete", "rows", result.RowsRead, "deleted", result.Deleted, "inserted", result.Inserted,
		"duration", result.Duration)

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	return r.writePlain("✓ Imported %d movies from %s (%d replaced) in %s\n",
		result.Inserted, result.Source, result.Deleted, result.Duration.Round(time.Millisecond))
}

// ExportMovies writes every stored movie in the requested format.
func (r *Runner) ExportMovies(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	movies, err := repositories.NewMovieRepository(db, r.config.Database.Driver).List(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to list movies: %w", err)
	}

	data, err := formatter.ExportMovies(movies, format)
	if err != nil {
		return err
	}
	return r.writeExport(data, cmd.String("output"), "movies", len(movies))
}

// writeExport writes data to path, or to the runner's output when path is empty.
func (r *Runner) writeExport(data []byte, path, what string, n int) error {
	if path == "" {
		return r.writePlain("%s", data)
	}

	if err := formatter.WriteExport(data, path); err != nil {
		return err
	}
	r.logger.Info("export written", what, n, "path", path)
	return r.writePlain("✓ Exported %d %s to %s\n", n, what, path)
}
