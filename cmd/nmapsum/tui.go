package main

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/app"
	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/format"
	"github.com/germanamz/nmapsum/cmd/nmapsum/internal/tty"
)

func runTUI(ctx context.Context, c commonFlags, scanPath, dotOut string) error {
	if scanPath == "-" {
		return errors.New("the TUI reads the keyboard from stdin; pass a file to -scan")
	}

	d, err := buildDeps(c, logFile)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	scan, err := readScan(scanPath, nil)
	if err != nil {
		return err
	}

	if dotOut == "" {
		dotOut = d.cfg.DotOut
	}

	// Detect the background once, before bubbletea owns the terminal, then
	// drop whatever the query left in stdin.
	format.IsDarkBG = lipgloss.HasDarkBackground()
	tty.FlushStdinBuffer()

	model := app.NewAppModel(ctx, d.sum, d.creds, app.Options{
		DotOut: dotOut,
		Usage:  d.client.UsageTracker(),
		Log:    d.log,
	})
	model.SetScan(scan)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithFilter(tty.NewStaleEscapeFilter(func(m tea.Model) bool {
			am, ok := m.(app.AppModel)
			return ok && am.InputEnabled()
		})),
	)

	d.log.Info("tui started", "version", version)
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
