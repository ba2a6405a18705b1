package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotylog/internal/shared"
	"github.com/desertthunder/spotylog/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs the playlist browser. Logs go to --log-file for as long as bubbletea owns the terminal.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logPath := cmd.String("log-file")
	fileLogger, f, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	fileLogger.SetLevel(r.logger.GetLevel())

	stderrLogger := r.logger
	r.SetLogger(fileLogger)
	defer r.SetLogger(stderrLogger)

	client, err := r.client()
	if err != nil {
		return err
	}
	tracker, done, err := r.tracker(ctx, client)
	if err != nil {
		return err
	}
	defer done()

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if !cmd.Bool("inline") {
		opts = append(opts, tea.WithAltScreen())
	}

	r.logger.Info("starting tui", "log_file", logPath)
	if _, err := tea.NewProgram(ui.NewModel(ctx, client, tracker), opts...).Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
