package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

var (
	logMu   sync.Mutex
	logPath = "logs/tts.log"
)

// Entry is one line of the TTS history.
type Entry struct {
	Provider string
	Voice    string
	Text     string
	Status   int // upstream HTTP status, 0 if not applicable
	Took     time.Duration
	Err      error
}

// SetLogPath sets the history file. An empty path disables the history.
func SetLogPath(path string) {
	logMu.Lock()
	defer logMu.Unlock()
	logPath = path
}

// Log appends e to the history file. Failures to write are ignored.
func Log(e Entry) {
	logMu.Lock()
	defer logMu.Unlock()
	if logPath == "" {
		return
	}

	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer f.Close()

	_, _ = f.WriteString(formatEntry(time.Now(), e))
}

func formatEntry(at time.Time, e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", at.Format(time.RFC3339), e.Provider)
	if e.Voice != "" {
		fmt.Fprintf(&b, " voice=%s", e.Voice)
	}
	if e.Status != 0 {
		fmt.Fprintf(&b, " status=%d", e.Status)
	}
	if e.Took > 0 {
		fmt.Fprintf(&b, " took=%s", e.Took.Round(time.Millisecond))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, " error=%q", e.Err.Error())
	} else {
		b.WriteString(" ok")
	}
	b.WriteByte('\n')
	for _, line := range strings.Split(strings.TrimSpace(e.Text), "\n") {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
