package launcher

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// shutdownGrace is how long a SIGTERM'd server gets before the forced kill.
const shutdownGrace = 5 * time.Second

// Shutdown terminates the subprocess: graceful signal first, forced kill
// after the grace window. It is idempotent; a second call on the same
// handle sends nothing and returns nil.
func (l *Launcher) Shutdown(h *Handle) error {
	var err error
	h.stopOnce.Do(func() {
		err = l.terminate(h)
	})
	return err
}

func (l *Launcher) terminate(h *Handle) error {
	if h.Exited() {
		l.logger.Debug("Shutdown requested but process already exited", "pid", h.PID())
		return nil
	}

	l.logger.Info("Stopping server process", "pid", h.PID())
	if err := h.signal(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to signal pid %d: %w", h.PID(), err)
	}

	select {
	case <-h.Done():
		if from := h.transition(StateStopped); from != StateStopped {
			l.logger.LogStateTransition("server", from.String(), StateStopped.String())
		}
		return nil
	case <-time.After(shutdownGrace):
	}

	// Escalation path. ErrShutdownTimeout is reported but never fatal.
	l.logger.Warn("Server did not exit within grace window, killing",
		"pid", h.PID(), "grace", shutdownGrace, "reason", ErrShutdownTimeout)
	if err := h.kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to kill pid %d: %w", h.PID(), err)
	}

	<-h.Done()
	if from := h.transition(StateStopped); from != StateStopped {
		l.logger.LogStateTransition("server", from.String(), StateStopped.String())
	}
	return nil
}
