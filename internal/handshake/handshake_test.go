package handshake

import (
	"context"
	"os"
	"testing"
	"time"

	"yunshu/internal/config"
	"yunshu/internal/logging"

	mcpsrv "github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestHelperStdioServer is not a real test: re-executed as a subprocess it
// serves a minimal MCP server over stdio for the probe to talk to.
func TestHelperStdioServer(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	s := mcpsrv.NewMCPServer("yunshu-test-server", "0.0.1")
	mcpsrv.ServeStdio(s)
	os.Exit(0) // keep the test framework's epilogue off stdout
}

func probeConfig(command ...string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Command = command
	cfg.PythonPath = nil
	return &cfg
}

func TestProbe_AgainstRealServer(t *testing.T) {
	cfg := probeConfig(os.Args[0], "-test.run=TestHelperStdioServer")
	t.Setenv("GO_WANT_HELPER_PROCESS", "1")

	logger, _ := logging.NewTestLogger()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()

	res, err := Probe(ctx, cfg, logger)
	require.NoError(t, err)
	assert.Equal(t, "yunshu-test-server", res.ServerName)
	assert.Equal(t, "0.0.1", res.ServerVersion)
	assert.NotEmpty(t, res.ProtocolVersion)
	assert.Less(t, res.Elapsed, DefaultTimeout)
}

func TestProbe_CommandMissing(t *testing.T) {
	cfg := probeConfig("definitely-not-a-real-binary-xyz")

	logger, _ := logging.NewTestLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Probe(ctx, cfg, logger)
	require.Error(t, err)
}

func TestProbe_NonProtocolServer(t *testing.T) {
	// A command that chats on stdout but never answers the handshake must
	// fail within the context deadline, not hang.
	cfg := probeConfig("sh", "-c", "echo hello; sleep 3")

	logger, _ := logging.NewTestLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Probe(ctx, cfg, logger)
	require.Error(t, err)
}
