package logger

import (
	"strings"
	"sync"
)

// History keeps the most recent log lines in memory so the console overlay
// can show engine output. It implements zapcore.WriteSyncer.
type History struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

// NewHistory creates a history that retains up to size lines.
func NewHistory(size int) *History {
	if size < 1 {
		size = 1
	}
	return &History{lines: make([]string, size)}
}

// Write stores each newline-separated line of p.
func (h *History) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		h.lines[h.next] = line
		h.next = (h.next + 1) % len(h.lines)
		if h.next == 0 {
			h.full = true
		}
	}
	return len(p), nil
}

// Sync is a no-op.
func (h *History) Sync() error {
	return nil
}

// Lines returns the retained lines, oldest first.
func (h *History) Lines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full {
		return append([]string(nil), h.lines[:h.next]...)
	}
	out := make([]string, 0, len(h.lines))
	out = append(out, h.lines[h.next:]...)
	return append(out, h.lines[:h.next]...)
}

// Last returns the newest line, or "" when nothing was logged yet.
func (h *History) Last() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.full && h.next == 0 {
		return ""
	}
	return h.lines[(h.next-1+len(h.lines))%len(h.lines)]
}
