package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/argusview/argus/internal/decode"
	"github.com/argusview/argus/internal/log"
	"github.com/argusview/argus/internal/metrics"
	"github.com/argusview/argus/internal/sink"
	"github.com/argusview/argus/internal/viewer"
)

var viewURL string

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Attach to a stream server and render frames",
	Long: `
Attach to an Argus stream server, demultiplex the frame stream and render
the most recent frame on every display tick until the stream ends or the
process is interrupted.

Examples:
  argus view                                 # defaults, null sink
  argus view -u http://10.0.0.83:5074        # explicit server
  argus view -c config.yml                   # buffer size, tick rate and sink from config
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

		if viewURL != "" {
			cfg.Viewer.BaseURL = viewURL
		}

		snk, err := sink.New(cfg.Viewer.Sink)
		if err != nil {
			exitWithError("failed to create display sink", err)
		}
		defer snk.Close()

		v := viewer.New(
			viewer.NewClient(cfg.Viewer.BaseURL),
			decode.JPEG{},
			snk,
			viewer.Options{
				BufferCapacity: cfg.Viewer.BufferCapacity,
				TickInterval:   cfg.Viewer.TickInterval,
				ReportInterval: cfg.Viewer.ReportInterval,
			},
		)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := v.Start(ctx); err != nil {
			exitWithError("failed to start stream session", err)
		}

		done := make(chan error, 1)
		go func() { done <- v.Wait() }()

		select {
		case <-ctx.Done():
			v.Stop()
			<-done
		case err := <-done:
			if err != nil {
				exitWithError("stream session failed", err)
			}
		}
	},
}

func init() {
	viewCmd.Flags().StringVarP(&viewURL, "url", "u", "", "stream server base URL (overrides config)")
	rootCmd.AddCommand(viewCmd)
}
