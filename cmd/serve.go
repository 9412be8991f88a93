package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/argusview/argus/internal/log"
	"github.com/argusview/argus/internal/metrics"
	"github.com/argusview/argus/internal/server"
	"github.com/argusview/argus/internal/source"
	"github.com/argusview/argus/internal/wire"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the stream server",
	Long: `
Run the Argus stream server.

The server paces the configured frame source at the target FPS and serves:
  GET  /                  minimal browser viewer
  GET  /stream/dimensions fixed frame dimensions as JSON
  POST /stream            unbounded chunked stream of length-prefixed JPEG frames
  GET  /healthz           liveness probe

Examples:
  argus serve                   # built-in test pattern on 0.0.0.0:5074
  argus serve -c config.yml     # source, rate and listen address from config
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitWithError("failed to load config", err)
		}
		log.Init(cfg.Logger)

		if cfg.Metrics.Enabled {
			ms := metrics.NewServer(cfg.Metrics.Listen, cfg.Metrics.Path)
			if err := ms.Start(); err != nil {
				exitWithError("failed to start metrics server", err)
			}
			defer ms.Stop(context.Background())
		}

		src, err := source.New(cfg.Server.Source, cfg.Server.Quality)
		if err != nil {
			exitWithError("failed to create frame source", err)
		}

		srv := server.New(server.Options{
			Listen: cfg.Server.Listen,
			FPS:    cfg.Server.FPS,
			Limits: wire.DefaultLimits(),
		}, src)
		if err := srv.Start(); err != nil {
			exitWithError("failed to start stream server", err)
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.GetLogger().Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(ctx); err != nil {
			exitWithError("shutdown failed", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
