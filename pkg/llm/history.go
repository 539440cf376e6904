package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// History appends prompt/response exchanges to a plain text log.
// A nil *History or empty path is a no-op.
type History struct {
	path string
	mu   sync.Mutex
}

// NewHistory creates a history writer for the given file.
func NewHistory(path string) *History {
	return &History{path: path}
}

// Record appends one exchange. A non-nil err is logged in place of the response.
func (h *History) Record(provider, profile, prompt, response string, err error) {
	if h == nil || h.path == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return
	}
	f, ferr := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if ferr != nil {
		return
	}
	defer f.Close()

	if err != nil {
		response = "ERROR: " + err.Error()
	}
	entry := fmt.Sprintf("[%s] %s/%s\nPROMPT:\n%s\n\nRESPONSE:\n%s\n%s\n",
		time.Now().Format("2006-01-02 15:04:05"), provider, profile,
		TruncateLines(prompt, 160), WordWrap(response, 80), strings.Repeat("-", 80))
	_, _ = f.WriteString(entry)
}
