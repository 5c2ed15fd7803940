package launcher

import (
	"context"
	"fmt"
	"time"
)

// readyPollInterval is the fixed probe cadence. A fixed interval keeps the
// worst-case detection latency predictable; nothing here benefits from
// backoff since the probe is a cheap local dial.
const readyPollInterval = 100 * time.Millisecond

// AwaitReady blocks until the server's listener accepts a TCP connection or
// the timeout elapses. The call also returns early with ErrRuntimeFailure
// if the subprocess dies while we wait.
//
// On ErrReadinessTimeout the subprocess is deliberately left running: a
// slow start is not proof of a broken one. The strict policy in cmd/yunshu
// decides whether the operator treats it as fatal.
func (l *Launcher) AwaitReady(ctx context.Context, h *Handle, timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	tick := time.NewTicker(readyPollInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-h.Done():
			return fmt.Errorf("pid %d exited before becoming ready (%v): %w",
				h.PID(), h.ExitErr(), ErrRuntimeFailure)

		case <-deadline.C:
			return fmt.Errorf("listener on %s:%d not ready after %v: %w",
				l.cfg.Host, l.cfg.Port, timeout, ErrReadinessTimeout)

		case <-tick.C:
			if probeListener(l.cfg.Host, l.cfg.Port, readyPollInterval) {
				from := h.transition(StateRunning)
				l.logger.LogStateTransition("server", from.String(), StateRunning.String())
				l.logger.Info("Server listener ready",
					"pid", h.PID(), "port", l.cfg.Port)
				return nil
			}
		}
	}
}
