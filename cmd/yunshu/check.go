package main

import (
	"context"
	"fmt"

	"yunshu/internal/handshake"
	"yunshu/internal/logging"

	"github.com/spf13/cobra"
)

var checkTimeout = handshake.DefaultTimeout

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the server answers an MCP initialize handshake",
	Long: `check spawns the configured server command over a throwaway stdio
transport and performs a real MCP initialize round-trip. It fails when the
server does not answer in time or when non-protocol bytes corrupt the
exchange, which makes it a quick field test of the stdio hygiene contract.`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", handshake.DefaultTimeout,
		"how long to wait for the initialize response")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.GetDefault()
	logger.SetDebug(cfg.Debug)

	ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
	defer cancel()

	res, err := handshake.Probe(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("handshake failed: %w", err)
	}

	fmt.Printf("handshake ok: %s %s (protocol %s, %v)\n",
		res.ServerName, res.ServerVersion, res.ProtocolVersion, res.Elapsed)
	return nil
}
