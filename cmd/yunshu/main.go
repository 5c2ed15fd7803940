// Package main is the entry point for the yunshu launcher CLI.
//
// The launcher brings up the MCP feedback server with a clean stdio
// channel: it frees the configured port, composes the subprocess
// environment, spawns the server with its diagnostics diverted to a log
// file, waits for the web listener, and supervises the process until the
// operator stops it. Companion commands verify the protocol handshake,
// bring up the web UI container, list the shipped skill bundles, and send
// text to the speaker sidecar.
package main

import (
	"errors"
	"fmt"
	"os"

	"yunshu/internal/config"
	"yunshu/internal/launcher"
	"yunshu/internal/logging"

	"github.com/spf13/cobra"
)

// Exit codes reported to the operator.
const (
	exitOK           = 0
	exitPortReclaim  = 1
	exitSpawn        = 2
	exitNotReady     = 3
	exitGenericError = 1
)

var (
	flagConfig  string
	flagPort    int
	flagHost    string
	flagDebug   bool
	flagStrict  bool
	flagLogFile string
)

var rootCmd = &cobra.Command{
	Use:   "yunshu",
	Short: "Launch and supervise the Yunshu MCP feedback server",
	Long: `yunshu starts the MCP feedback server with a guaranteed-clean stdio
channel: standard output carries nothing but protocol frames, while all
diagnostics are diverted to a log file. Run without a subcommand it
behaves like "yunshu start".`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStart,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to config file (default: XDG config dir)")
	pf.IntVar(&flagPort, "port", 0, "web listener port (default 8765)")
	pf.StringVar(&flagHost, "host", "", "bind host for the web listener")
	pf.BoolVar(&flagDebug, "debug", false, "enable debug logging")
	pf.BoolVar(&flagStrict, "strict", false, "treat a readiness timeout as fatal")
	pf.StringVar(&flagLogFile, "log-file", "", "diagnostic log file path")

	rootCmd.AddCommand(startCmd, checkCmd, webCmd, skillsCmd, speakCmd)
}

// loadConfig builds the effective launch configuration: file (or defaults),
// then flag overrides. The result is treated as immutable afterwards.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if flagConfig != "" {
		cfg, err = config.LoadFrom(flagConfig)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = flagPort
	}
	if flags.Changed("host") {
		cfg.Host = flagHost
	}
	if flags.Changed("debug") {
		cfg.Debug = flagDebug
	}
	if flags.Changed("strict") {
		cfg.Strict = flagStrict
	}
	if flags.Changed("log-file") {
		cfg.LogFile = flagLogFile
	}

	return cfg, nil
}

// exitCode maps a command error onto the documented exit codes.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, launcher.ErrPortReclaimTimeout):
		return exitPortReclaim
	case errors.Is(err, launcher.ErrSpawnFailure):
		return exitSpawn
	case errors.Is(err, launcher.ErrReadinessTimeout):
		return exitNotReady
	default:
		return exitGenericError
	}
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		// Operator-facing: stdout may be a protocol channel, so the
		// failure report goes to stderr alongside the log record.
		fmt.Fprintf(os.Stderr, "yunshu: %v\n", err)
		logging.Error("Command failed", "error", err)
	}
	os.Exit(exitCode(err))
}
