package commands

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/app"
	"github.com/nhle/qtplanner/internal/commands/options"
	"github.com/nhle/qtplanner/internal/draft"
	"github.com/nhle/qtplanner/internal/logging"
	"github.com/nhle/qtplanner/internal/model"
	"github.com/nhle/qtplanner/internal/theme"
)

func runUI(ctx context.Context, uo *options.UIOptions) error {
	cfg, err := co.Load()
	if err != nil {
		return err
	}

	// The terminal belongs to the UI, so diagnostics go to the log file.
	logger, closer, err := logging.OpenFile(cfg.Log)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := openClient(cfg, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	theme.SetMode(theme.ParseMode(cfg.Display.Theme))

	label := cfg.Backend.Mode
	if cfg.Backend.Mode == model.BackendRemote {
		label = cfg.Backend.URL
	}

	m := app.New(client, app.Options{
		StartRoute:     uo.Route,
		Offset:         draft.Offset(cfg.StorageOffset()),
		Location:       cfg.Location(),
		BannerDuration: cfg.BannerDuration(),
		BackendLabel:   label,
		Logger:         logger,
	})

	logger.Info("starting ui", "backend", cfg.Backend.Mode, "route", uo.Route)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running ui: %w", err)
	}
	return nil
}
