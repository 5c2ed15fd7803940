package launcher

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const (
	// reclaimGrace is how long a signalled occupant gets to release the port.
	reclaimGrace = 1 * time.Second
	// reclaimPoll is the fixed re-check interval during the grace window.
	reclaimPoll = 50 * time.Millisecond
)

// ReclaimPort frees the configured TCP port before spawning. If another
// process currently listens on it, that process is sent SIGTERM and the
// port is re-checked until the grace window elapses.
//
// Killing the occupant is a deliberate, destructive precondition step: it
// is logged loudly, never retried, and a failure to release the port within
// the grace window is fatal to the launch attempt.
func (l *Launcher) ReclaimPort(ctx context.Context, port int) error {
	pid, err := portOwner(port)
	if err != nil {
		return fmt.Errorf("failed to query port %d ownership: %w", port, err)
	}
	if pid == 0 {
		l.logger.Debug("Port is free", "port", port)
		return nil
	}
	if pid == os.Getpid() {
		return fmt.Errorf("port %d is held by the launcher itself", port)
	}

	l.logger.Warn("Terminating process holding target port",
		"port", port, "pid", pid)
	if err := syscall.Kill(pid, syscall.SIGTERM); err != nil && err != syscall.ESRCH {
		return fmt.Errorf("failed to signal pid %d on port %d: %w", pid, port, err)
	}

	deadline := time.Now().Add(reclaimGrace)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(reclaimPoll):
		}

		// Ownership is queried fresh on every pass, never cached.
		owner, err := portOwner(port)
		if err != nil {
			return fmt.Errorf("failed to re-query port %d ownership: %w", port, err)
		}
		if owner == 0 {
			l.logger.Info("Port reclaimed", "port", port, "previous_pid", pid)
			return nil
		}
	}

	return fmt.Errorf("pid %d still bound to port %d after %v: %w",
		pid, port, reclaimGrace, ErrPortReclaimTimeout)
}

// portOwner returns the pid of the process listening on the TCP port, or 0
// when the port is free. It reads the kernel's socket tables directly and
// falls back to lsof on systems without procfs.
func portOwner(port int) (int, error) {
	inodes, err := listeningInodes(port)
	if err != nil {
		if os.IsNotExist(err) {
			return portOwnerLsof(port)
		}
		return 0, err
	}
	if len(inodes) == 0 {
		return 0, nil
	}
	return pidForSocketInodes(inodes)
}

// listeningInodes collects socket inodes in LISTEN state on the given port
// from /proc/net/tcp and /proc/net/tcp6.
func listeningInodes(port int) (map[string]bool, error) {
	inodes := make(map[string]bool)
	tables := []string{"/proc/net/tcp", "/proc/net/tcp6"}

	var opened bool
	for _, table := range tables {
		f, err := os.Open(table)
		if err != nil {
			continue
		}
		opened = true

		scanner := bufio.NewScanner(f)
		scanner.Scan() // header line
		for scanner.Scan() {
			fields := strings.Fields(scanner.Text())
			if len(fields) < 10 {
				continue
			}
			// fields: sl local rem st ... inode at index 9
			const stateListen = "0A"
			if fields[3] != stateListen {
				continue
			}
			local := fields[1]
			idx := strings.LastIndex(local, ":")
			if idx < 0 {
				continue
			}
			p, err := strconv.ParseUint(local[idx+1:], 16, 32)
			if err != nil || int(p) != port {
				continue
			}
			inodes[fields[9]] = true
		}
		f.Close()
	}

	if !opened {
		return nil, os.ErrNotExist
	}
	return inodes, nil
}

// pidForSocketInodes walks /proc/<pid>/fd looking for a process holding one
// of the given socket inodes.
func pidForSocketInodes(inodes map[string]bool) (int, error) {
	procDirs, err := os.ReadDir("/proc")
	if err != nil {
		return 0, err
	}

	for _, dir := range procDirs {
		pid, err := strconv.Atoi(dir.Name())
		if err != nil {
			continue
		}
		fdDir := filepath.Join("/proc", dir.Name(), "fd")
		fds, err := os.ReadDir(fdDir)
		if err != nil {
			continue // process gone or not ours to inspect
		}
		for _, fd := range fds {
			target, err := os.Readlink(filepath.Join(fdDir, fd.Name()))
			if err != nil {
				continue
			}
			if !strings.HasPrefix(target, "socket:[") {
				continue
			}
			inode := strings.TrimSuffix(strings.TrimPrefix(target, "socket:["), "]")
			if inodes[inode] {
				return pid, nil
			}
		}
	}
	return 0, nil
}

// portOwnerLsof shells out to lsof, the portable fallback when procfs is
// unavailable.
func portOwnerLsof(port int) (int, error) {
	out, err := exec.Command("lsof", "-ti", fmt.Sprintf("tcp:%d", port), "-sTCP:LISTEN").Output()
	if err != nil {
		// lsof exits non-zero when nothing matches.
		if _, ok := err.(*exec.ExitError); ok {
			return 0, nil
		}
		return 0, fmt.Errorf("lsof failed: %w", err)
	}
	line := strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
	if line == "" {
		return 0, nil
	}
	pid, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("unexpected lsof output %q: %w", line, err)
	}
	return pid, nil
}

// probeListener attempts a TCP connection to host:port and reports whether
// the listener accepted within the dial timeout.
func probeListener(host string, port int, timeout time.Duration) bool {
	if host == "0.0.0.0" || host == "::" || host == "" {
		host = "127.0.0.1"
	}
	conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, strconv.Itoa(port)), timeout)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
