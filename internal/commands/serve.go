package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nhle/qtplanner/internal/auth"
	"github.com/nhle/qtplanner/internal/backend"
	"github.com/nhle/qtplanner/internal/logging"
	"github.com/nhle/qtplanner/internal/realtime"
	"github.com/nhle/qtplanner/internal/server"
	"github.com/nhle/qtplanner/internal/store"
)

func addServe(topLevel *cobra.Command) {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend.",
		Example: `
qtplanner serve
qtplanner serve --addr :9000
`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := co.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			logger := logging.New(os.Stderr, cfg.Log)
			logOAuth(logger, cfg.OAuth)

			if err := ensureDir(cfg.Backend.Database); err != nil {
				return err
			}
			s, err := store.NewSQLiteStore(cfg.Backend.Database)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer s.Close()

			hub := realtime.NewHub(logger)
			svc := backend.NewService(s, auth.NewService(s), hub, logger)
			if cfg.Backend.APIKey == "" {
				logger.Warn("backend.api_key is empty; requests are not checked for a key")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(svc, cfg.Backend.APIKey, logger).ListenAndServe(ctx, cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overriding server.addr.")

	topLevel.AddCommand(cmd)
}
