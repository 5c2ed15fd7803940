// Package bridge manages the companion web-UI container. It mirrors what
// an operator would do by hand: check whether the container runs, start or
// create it, wait for the HTTP endpoint, then open a browser.
package bridge

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"yunshu/internal/config"
	"yunshu/internal/logging"

	"github.com/pkg/browser"
)

// httpPollInterval is the fixed cadence for the endpoint readiness check.
const httpPollInterval = 500 * time.Millisecond

type commandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Bridge drives the docker CLI for one configured container.
type Bridge struct {
	cfg    *config.Config
	logger *logging.AppLogger
	run    commandRunner
	open   func(url string) error
}

// New creates a Bridge for the configured container.
func New(cfg *config.Config, logger *logging.AppLogger) *Bridge {
	return &Bridge{
		cfg:    cfg,
		logger: logger,
		run:    runCommand,
		open:   browser.OpenURL,
	}
}

// Up brings the web UI to a usable state: container running, endpoint
// answering, browser pointed at it.
func (b *Bridge) Up(ctx context.Context, timeout time.Duration) error {
	if err := b.EnsureContainer(ctx); err != nil {
		return err
	}
	if err := b.AwaitHTTP(ctx, timeout); err != nil {
		return err
	}
	return b.OpenUI()
}

// EnsureContainer makes sure the configured container is running, starting
// an existing one or creating a fresh one from the configured image.
func (b *Bridge) EnsureContainer(ctx context.Context) error {
	name := b.cfg.WebContainer
	if name == "" {
		return fmt.Errorf("no web container configured")
	}

	out, err := b.run(ctx, "docker", "inspect", "-f", "{{.State.Running}}", name)
	switch {
	case err == nil && strings.Contains(strings.ToLower(string(out)), "true"):
		b.logger.Debug("Container already running", "container", name)
		return nil

	case err == nil:
		b.logger.Info("Starting existing container", "container", name)
		if _, err := b.run(ctx, "docker", "start", name); err != nil {
			return fmt.Errorf("failed to start container %q: %w", name, err)
		}
		return nil

	default:
		// Inspect failed: the container does not exist yet.
		if b.cfg.WebImage == "" {
			return fmt.Errorf("container %q not found and no image configured to create it", name)
		}
		b.logger.Info("Creating container", "container", name, "image", b.cfg.WebImage)
		port := strconv.Itoa(b.cfg.Port)
		_, err := b.run(ctx, "docker", "run", "-d",
			"--name", name,
			"-p", port+":"+port,
			b.cfg.WebImage,
		)
		if err != nil {
			return fmt.Errorf("failed to create container %q from %q: %w", name, b.cfg.WebImage, err)
		}
		return nil
	}
}

// AwaitHTTP polls the web UI endpoint until it answers or the timeout
// elapses. Any HTTP status counts as alive; the bridge only cares that the
// listener responds.
func (b *Bridge) AwaitHTTP(ctx context.Context, timeout time.Duration) error {
	url := b.cfg.WebURL()
	client := &http.Client{Timeout: httpPollInterval}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(httpPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("web UI at %s not answering after %v", url, timeout)
		case <-tick.C:
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return err
			}
			resp, err := client.Do(req)
			if err != nil {
				continue
			}
			resp.Body.Close()
			b.logger.Info("Web UI answering", "url", url, "status", resp.StatusCode)
			return nil
		}
	}
}

// OpenUI opens the operator's browser at the web UI address.
func (b *Bridge) OpenUI() error {
	url := b.cfg.WebURL()
	b.logger.Info("Opening web UI", "url", url)
	if err := b.open(url); err != nil {
		return fmt.Errorf("failed to open browser at %s: %w", url, err)
	}
	return nil
}
