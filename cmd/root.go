// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/argusview/argus/internal/config"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Argus - Live MJPEG streaming server and viewer",
	Long: `Argus streams independently-encoded JPEG frames over a single long-lived
chunked HTTP response and renders only the most recent frame on the viewer side.

Components:
  - serve: pace a frame source at a target FPS and fan frames out to stream clients
  - view:  attach to a stream server, demultiplex frames and render the latest one
  - probe: query a stream server for its fixed frame dimensions

Frames the viewer cannot keep up with are dropped, never queued: staleness is
worse than incompleteness for a live view.`,
	Version: "0.1.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults apply when omitted)")
}

// loadConfig loads the configured file, or pure defaults without one.
func loadConfig() (*config.ArgusConfig, error) {
	if configFile == "" {
		return config.Default(), nil
	}
	return config.Load(configFile)
}

// exitWithError prints error message and exits with code 1
func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
