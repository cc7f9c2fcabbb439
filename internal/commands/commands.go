// Package commands wires the qtplanner command line.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/commands/options"
	"github.com/nhle/qtplanner/internal/credential"
	"github.com/nhle/qtplanner/internal/model"
)

var (
	co = &options.ConfigOptions{}
)

func New() *cobra.Command {
	uo := &options.UIOptions{}

	cmd := &cobra.Command{
		Use:          "qtplanner",
		Short:        "Shared schedules and QT journaling in the terminal.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(cmd.Context(), uo)
		},
	}
	options.AddConfigArgs(cmd, co)
	options.AddUIArgs(cmd, uo)

	AddCommands(cmd)
	return cmd
}

func AddCommands(topLevel *cobra.Command) {
	addServe(topLevel)
	addList(topLevel)
}

// openClient builds the backend selected by cfg.Backend.Mode. The session
// token lives in the OS keyring.
func openClient(cfg *model.AppConfig, logger *slog.Logger) (backend.Client, error) {
	logOAuth(logger, cfg.OAuth)
	tokens := credential.NewKeyring()
	switch cfg.Backend.Mode {
	case model.BackendRemote:
		return backend.NewRemote(cfg.Backend.URL, cfg.Backend.APIKey, tokens, logger), nil
	default:
		if err := ensureDir(cfg.Backend.Database); err != nil {
			return nil, err
		}
		return backend.OpenLocal(cfg.Backend.Database, tokens, logger)
	}
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return nil
}

// logOAuth records the identity provider settings. Sign-in itself stays
// email and password.
func logOAuth(logger *slog.Logger, o model.OAuthConfig) {
	if o.GoogleClientID == "" {
		return
	}
	logger.Info("google oauth configured; only email sign-in is offered",
		"client_id", o.GoogleClientID,
		"redirect_uri", o.RedirectURI,
	)
}
