package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTB returns a logger that writes through t.Log at the given level.
func NewTB(t testing.TB, level Level) *slog.Logger {
	return slog.New(TBHandler(t, level))
}

// TBHandler returns a text handler whose lines are passed to t.Log.
func TBHandler(t testing.TB, level Level) slog.Handler {
	return slog.NewTextHandler(&tbWriter{t: t}, &slog.HandlerOptions{Level: level})
}

type tbWriter struct {
	mu  sync.Mutex
	t   testing.TB
	buf bytes.Buffer
}

// Write emits each complete line as one t.Log call.
func (w *tbWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.t.Helper()
	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Keep the partial line for the next write.
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		w.t.Log(strings.TrimSuffix(line, "\n"))
	}
	return len(p), nil
}
