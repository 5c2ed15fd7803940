// Package handshake verifies that a configured server command actually
// speaks MCP: it spawns the command over a stdio transport, performs the
// initialize round-trip, and reports what answered.
package handshake

import (
	"context"
	"fmt"
	"time"

	"yunshu/internal/config"
	"yunshu/internal/launcher"
	"yunshu/internal/logging"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultTimeout bounds the whole probe, matching the window an MCP host
// typically grants the initialize exchange.
const DefaultTimeout = 5 * time.Second

// Result describes the server that answered the initialize request.
type Result struct {
	ServerName      string
	ServerVersion   string
	ProtocolVersion string
	Elapsed         time.Duration
}

// Probe launches the configured server command, sends an MCP initialize
// request over its stdio channel, and waits for the response. Any byte of
// non-protocol output from the server corrupts the exchange and surfaces
// here as a failed or timed-out handshake, which makes Probe a practical
// field check of the stdio hygiene contract.
func Probe(ctx context.Context, cfg *config.Config, logger *logging.AppLogger) (*Result, error) {
	name, args := launcher.ServerCommand(cfg)
	env := launcher.BuildEnvironment(cfg, nil)

	logger.Debug("Starting handshake probe", "command", name, "args", args)
	start := time.Now()

	c, err := client.NewStdioMCPClient(name, env, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to start server for handshake: %w", err)
	}
	defer c.Close()

	req := mcp.InitializeRequest{}
	req.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	req.Params.ClientInfo = mcp.Implementation{
		Name:    "yunshu-launcher",
		Version: "1.0.0",
	}

	res, err := c.Initialize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("initialize exchange failed: %w", err)
	}

	result := &Result{
		ServerName:      res.ServerInfo.Name,
		ServerVersion:   res.ServerInfo.Version,
		ProtocolVersion: res.ProtocolVersion,
		Elapsed:         time.Since(start),
	}
	logger.Info("Handshake succeeded",
		"server", result.ServerName,
		"version", result.ServerVersion,
		"protocol", result.ProtocolVersion,
		"elapsed", result.Elapsed,
	)
	return result, nil
}
