package logging

import (
	"strings"
	"sync"
)

// TailBuffer is an io.Writer that remembers the last few log lines.
type TailBuffer struct {
	mu    sync.Mutex
	lines []string
	next  int
	count int
}

// Tail holds the server's recent INFO+ lines for the log endpoint.
var Tail = NewTailBuffer(50)

func NewTailBuffer(size int) *TailBuffer {
	return &TailBuffer{lines: make([]string, max(size, 1))}
}

// Write stores each non-empty line of p.
func (b *TailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for line := range strings.SplitSeq(string(p), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.lines[b.next] = line
		b.next = (b.next + 1) % len(b.lines)
		b.count = min(b.count+1, len(b.lines))
	}
	return len(p), nil
}

// Last returns the newest line, or "" before anything was logged.
func (b *TailBuffer) Last() string {
	lines := b.Recent(1)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

// Recent returns up to n lines, oldest first.
func (b *TailBuffer) Recent(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	n = min(n, b.count)
	out := make([]string, 0, n)
	for i := n; i > 0; i-- {
		out = append(out, b.lines[(b.next-i+len(b.lines))%len(b.lines)])
	}
	return out
}
