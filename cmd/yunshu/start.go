package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"yunshu/internal/launcher"
	"yunshu/internal/logging"
	"yunshu/internal/stdio"

	"github.com/spf13/cobra"
)

// readinessTimeout bounds how long start waits for the web listener.
const readinessTimeout = 10 * time.Second

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start and supervise the MCP feedback server",
	RunE:  runStart,
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.GetDefault()
	logger.SetDebug(cfg.Debug)
	if err := logger.RedirectToFile(cfg.LogFile); err != nil {
		return err
	}
	defer logger.Close()

	logger.Info("Launch configuration",
		"port", cfg.Port, "host", cfg.Host,
		"strict", cfg.Strict, "log_file", cfg.LogFile)
	logger.DebugObject("effective configuration", cfg)

	l := launcher.New(cfg, logger)
	// Everything the server writes to stdout passes the frame filter, so
	// a stray banner can never corrupt the protocol channel upstream.
	filter := stdio.NewFrameWriter(os.Stdout, logger)
	l.Stdout = filter

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Destructive precondition step: whoever holds the port is terminated.
	if err := l.ReclaimPort(ctx, cfg.Port); err != nil {
		return err
	}

	env := launcher.BuildEnvironment(cfg, os.Environ())
	handle, err := l.Spawn(env)
	if err != nil {
		return err
	}

	if err := l.AwaitReady(ctx, handle, readinessTimeout); err != nil {
		switch {
		case errors.Is(err, launcher.ErrReadinessTimeout) && cfg.Strict:
			// Strict policy: tear the subprocess down and fail hard.
			if shutdownErr := l.Shutdown(handle); shutdownErr != nil {
				logger.Error("Shutdown after readiness timeout failed", "error", shutdownErr)
			}
			return err
		case errors.Is(err, launcher.ErrReadinessTimeout):
			// The server may simply be slow; leave it running but make
			// sure the operator knows.
			fmt.Fprintf(os.Stderr, "yunshu: warning: %v (server left running)\n", err)
			logger.Warn("Continuing despite readiness timeout", "error", err)
		default:
			return err
		}
	}

	return supervise(l, handle, filter, logger)
}

// supervise blocks until the server exits on its own or the operator sends
// a stop signal. Shutdown runs exactly once; repeated signals while the
// grace window drains are absorbed by the handle's idempotence.
func supervise(l *launcher.Launcher, handle *launcher.Handle, filter *stdio.FrameWriter, logger *logging.AppLogger) error {
	defer filter.Flush()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		logger.Info("Stop signal received", "signal", s.String())
		if err := l.Shutdown(handle); err != nil {
			return err
		}
		return nil

	case <-handle.Done():
		if exitErr := handle.ExitErr(); exitErr != nil {
			return fmt.Errorf("%v: %w", exitErr, launcher.ErrRuntimeFailure)
		}
		logger.Info("Server exited normally")
		return nil
	}
}
