// Package launcher brings up exactly one instance of the MCP protocol
// server on a configured port and supervises it until shutdown.
//
// The launcher's contract is stdio hygiene: the subprocess's standard
// output must carry nothing but protocol frames. Its stderr is redirected
// to the diagnostic log file, library warnings are suppressed through the
// environment, and anything that still reaches stdout can be routed
// through the frame filter in internal/stdio.
package launcher

import (
	"io"
	"sync"
	"time"

	"yunshu/internal/config"
	"yunshu/internal/logging"
)

// State of a supervised subprocess.
type State int

const (
	StateStarting State = iota
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateRunning:
		return "Running"
	case StateStopped:
		return "Stopped"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// Launcher supervises a single protocol-server subprocess. One supervising
// goroutine owns the Handle; the background waiter applies exit status
// through the Handle's mutex.
type Launcher struct {
	cfg    *config.Config
	logger *logging.AppLogger

	// Stdout is the destination for the subprocess's protocol frames.
	// Defaults to the launcher's own stdout when nil.
	Stdout io.Writer
	// Stderr receives the subprocess's diagnostics. Defaults to the
	// logger's attached log file when nil.
	Stderr io.Writer
	// Stdin carries frames from the upstream host to the subprocess.
	// Defaults to the launcher's own stdin when nil.
	Stdin io.Reader
}

// New creates a Launcher for the given configuration.
func New(cfg *config.Config, logger *logging.AppLogger) *Launcher {
	return &Launcher{cfg: cfg, logger: logger}
}

// Handle represents one spawned subprocess. It is created by Spawn and
// destroyed when the subprocess is reaped; all state transitions go
// through its mutex.
type Handle struct {
	mu        sync.Mutex
	pid       int
	state     State
	startedAt time.Time
	exitErr   error

	done     chan struct{} // closed once the waiter reaps the process
	stopOnce sync.Once
	signal   func() error // sends graceful termination
	kill     func() error // forced kill escalation
}

// PID returns the operating system process id.
func (h *Handle) PID() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.pid
}

// State returns the current lifecycle state.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// StartedAt returns the spawn timestamp.
func (h *Handle) StartedAt() time.Time {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.startedAt
}

// ExitErr returns the error the process exited with, if any. Only
// meaningful once Exited reports true.
func (h *Handle) ExitErr() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.exitErr
}

// Exited reports whether the subprocess has been reaped.
func (h *Handle) Exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the subprocess has been reaped.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// transition moves the handle to state s and returns the state it left.
func (h *Handle) transition(s State) State {
	h.mu.Lock()
	from := h.state
	h.state = s
	h.mu.Unlock()
	return from
}
