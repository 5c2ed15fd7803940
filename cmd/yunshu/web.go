package main

import (
	"time"

	"yunshu/internal/bridge"
	"yunshu/internal/logging"

	"github.com/spf13/cobra"
)

var webTimeout time.Duration

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Bring up the web UI container and open it in a browser",
	RunE:  runWeb,
}

func init() {
	webCmd.Flags().DurationVar(&webTimeout, "timeout", 30*time.Second,
		"how long to wait for the web UI to answer")
}

func runWeb(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := logging.GetDefault()
	logger.SetDebug(cfg.Debug)

	b := bridge.New(cfg, logger)
	return b.Up(cmd.Context(), webTimeout)
}
