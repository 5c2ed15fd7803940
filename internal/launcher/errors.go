package launcher

import "errors"

// Failure kinds surfaced to the operator. Each launch-fatal kind maps to a
// distinct process exit code in cmd/yunshu.
var (
	// ErrPortReclaimTimeout means the previous occupant of the target port
	// did not release it within the grace window after being signalled.
	ErrPortReclaimTimeout = errors.New("port reclaim timeout")

	// ErrSpawnFailure means the server process could not be started at all:
	// the interpreter is missing or the OS rejected the exec. A process that
	// starts and then dies quickly is ErrRuntimeFailure instead, detected by
	// the readiness check.
	ErrSpawnFailure = errors.New("spawn failure")

	// ErrRuntimeFailure means the server exited unexpectedly after a
	// successful spawn.
	ErrRuntimeFailure = errors.New("server exited unexpectedly")

	// ErrReadinessTimeout means the listener never accepted a connection
	// within the readiness window. The subprocess is left running unless the
	// strict policy is set.
	ErrReadinessTimeout = errors.New("readiness timeout")

	// ErrShutdownTimeout means graceful termination had to escalate to a
	// forced kill. It is logged, never fatal.
	ErrShutdownTimeout = errors.New("graceful shutdown timeout")
)
