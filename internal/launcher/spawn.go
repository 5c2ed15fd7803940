package launcher

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
	"time"

	"yunshu/internal/config"
)

// ServerCommand resolves the argv used to start the protocol server. The
// default is `<python> -m <module>`; a configured command overrides it.
func ServerCommand(cfg *config.Config) (string, []string) {
	if len(cfg.Command) > 0 {
		return cfg.Command[0], cfg.Command[1:]
	}
	return cfg.Python, []string{"-m", cfg.ServerModule}
}

// Spawn starts the protocol server subprocess with the composed environment.
//
// Stream wiring enforces the stdio hygiene contract: stdin and stdout carry
// protocol frames between the upstream host and the server, while stderr is
// redirected to the diagnostic log file so no banner or traceback can reach
// the frame channel. The server starts its own web listener on a background
// task, so Spawn returns as soon as the process exists; listener readiness
// is AwaitReady's job.
//
// An unlocatable executable or a failed exec is ErrSpawnFailure. A process
// that starts and dies moments later is not: that surfaces later as
// ErrRuntimeFailure.
func (l *Launcher) Spawn(env []string) (*Handle, error) {
	name, args := ServerCommand(l.cfg)
	bin, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("executable %q not found: %w", name, ErrSpawnFailure)
	}

	// No CommandContext here: termination is Shutdown's job, and a context
	// cancellation would skip the graceful SIGTERM stage.
	cmd := exec.Command(bin, args...)
	cmd.Env = env

	if l.Stdin != nil {
		cmd.Stdin = l.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	if l.Stdout != nil {
		cmd.Stdout = l.Stdout
	} else {
		cmd.Stdout = os.Stdout
	}
	if l.Stderr != nil {
		cmd.Stderr = l.Stderr
	} else if f := l.logger.LogFile(); f != nil {
		cmd.Stderr = f
	} else {
		cmd.Stderr = os.Stderr
	}

	l.logger.Info("Spawning protocol server",
		"executable", bin,
		"args", args,
		"port", l.cfg.Port,
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %q: %v: %w", bin, err, ErrSpawnFailure)
	}

	h := &Handle{
		pid:       cmd.Process.Pid,
		state:     StateStarting,
		startedAt: time.Now(),
		done:      make(chan struct{}),
		signal: func() error {
			return cmd.Process.Signal(syscall.SIGTERM)
		},
		kill: func() error {
			return cmd.Process.Kill()
		},
	}

	// Waiter: reap the child and publish its exit through the handle.
	go func() {
		err := cmd.Wait()

		h.mu.Lock()
		h.exitErr = err
		from := h.state
		if err != nil {
			h.state = StateFailed
		} else {
			h.state = StateStopped
		}
		to := h.state
		h.mu.Unlock()
		close(h.done)

		l.logger.LogStateTransition("server", from.String(), to.String())
		if err != nil {
			l.logger.Warn("Server process exited with error", "pid", h.pid, "error", err)
		} else {
			l.logger.Info("Server process exited", "pid", h.pid)
		}
	}()

	l.logger.Debug("Server process started", "pid", h.pid)
	return h, nil
}
