// Package stdio guards the MCP protocol channel. The launcher's contract
// is that standard output carries only well-formed protocol frames;
// FrameWriter enforces it by letting frame bytes through and diverting
// everything else to the diagnostic logger.
package stdio

import (
	"bytes"
	"io"
	"strings"
	"sync"

	"yunshu/internal/logging"
)

// FrameWriter is a line-buffered io.Writer that forwards protocol frames to
// the real output and diverts stray diagnostics to the logger.
//
// A line is considered part of a frame when it is pure whitespace (frame
// separators), starts with '{' (a JSON-RPC message), or starts with a
// Content-Length header. Stray library banners, prints and tracebacks fail
// all three checks and are intercepted.
type FrameWriter struct {
	mu          sync.Mutex
	out         io.Writer
	logger      *logging.AppLogger
	buf         bytes.Buffer
	intercepted int
}

// NewFrameWriter wraps out so only protocol frames pass through.
func NewFrameWriter(out io.Writer, logger *logging.AppLogger) *FrameWriter {
	return &FrameWriter{out: out, logger: logger}
}

// Write buffers p and emits every complete line through the frame check.
// It always reports len(p) consumed so the producer never stalls on an
// intercepted line.
func (w *FrameWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadBytes('\n')
		if err != nil {
			// Partial line: keep it buffered until its newline arrives.
			w.buf.Reset()
			w.buf.Write(line)
			break
		}
		if err := w.emit(line); err != nil {
			return len(p), err
		}
	}
	return len(p), nil
}

// Flush pushes any buffered partial line through the frame check. Call it
// once the producer has exited.
func (w *FrameWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}
	line := append([]byte(nil), w.buf.Bytes()...)
	w.buf.Reset()
	return w.emit(line)
}

// Intercepted returns how many non-frame lines were diverted so far.
func (w *FrameWriter) Intercepted() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.intercepted
}

func (w *FrameWriter) emit(line []byte) error {
	trimmed := strings.TrimSpace(string(line))
	if trimmed == "" || strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "Content-Length:") {
		_, err := w.out.Write(line)
		return err
	}

	w.intercepted++
	w.logger.Warn("Intercepted non-protocol bytes on stdout", "line", trimmed)
	return nil
}
