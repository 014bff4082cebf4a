package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/imagestrip/internal/config"
	"github.com/five82/imagestrip/internal/logging"
	"github.com/five82/imagestrip/internal/manifest"
	"github.com/five82/imagestrip/internal/resize"
	"github.com/five82/imagestrip/internal/server"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the strip server",
		Long: `Starts the HTTP and WebSocket server that owns the strip sessions.

Every new session is preloaded with the images listed in the manifest.
Scaled copies are written to the cache directory and served under /assets/.`,
		Example: `  # Start on the configured address
  imagestrip serve

  # Start on a custom address
  imagestrip serve --listen :8080`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if listen != "" {
				cfg.Listen = listen
			}

			logger, closeLog, err := logging.Open(cfg.ServerLogPath(), "imagestrip", cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer func() { _ = closeLog() }()

			resizer, err := resize.New(cfg.CacheDir, resize.WithLogger(logger.WithPrefix("resize")))
			if err != nil {
				return err
			}
			preload, err := manifest.Load(cfg.Manifest)
			if err != nil {
				return err
			}
			stripOpts, err := cfg.StripOptions()
			if err != nil {
				return err
			}

			srv, err := server.New(server.Config{
				Resizer:  resizer,
				AssetDir: resizer.Dir(),
				Strip:    stripOpts,
				Preload:  preload,
				Logger:   logger,
			})
			if err != nil {
				return err
			}
			logger.Info("starting server", "listen", cfg.Listen, "manifest", cfg.Manifest, "images", len(preload))
			return srv.ListenAndServe(cmd.Context(), cfg.Listen)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", "", "address to listen on (overrides config)")

	return cmd
}
