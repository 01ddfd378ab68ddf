package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/movierec/internal/repositories"
	"github.com/desertthunder/movierec/internal/shared"
	"github.com/desertthunder/movierec/internal/ui"
	"github.com/urfave/cli/v3"
)

const tuiLogPath = "./tmp/movierec-tui.log"

// Browse launches the interactive terminal UI over the stored movies and users.
func (r *Runner) Browse(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openSchema()
	if err != nil {
		return err
	}
	defer db.Close()

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(tuiLogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	driver := r.config.Database.Driver
	model := ui.NewModel(ctx, repositories.NewMovieRepository(db, driver), repositories.NewUserRepository(db, driver))
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
