package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/argusview/argus/internal/viewer"
)

var probeURL string

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Query a stream server for its frame dimensions",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		if err != nil {
			exitWithError("failed to load config", err)
		}
		if probeURL == "" {
			probeURL = cfg.Viewer.BaseURL
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		dims, err := viewer.NewClient(probeURL).Dimensions(ctx)
		if err != nil {
			exitWithError("dimensions query failed", err)
		}
		fmt.Printf("%s: %dx%d\n", probeURL, dims.Width, dims.Height)
	},
}

func init() {
	probeCmd.Flags().StringVarP(&probeURL, "url", "u", "", "stream server base URL (overrides config)")
	rootCmd.AddCommand(probeCmd)
}
