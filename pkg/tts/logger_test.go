package tts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "tts.log")
	SetLogPath(path)
	t.Cleanup(func() { SetLogPath("logs/tts.log") })

	Log(Entry{Provider: "edge-tts", Voice: "en-US-AvaNeural", Text: "Up next, the news.", Took: 1500 * time.Millisecond})
	Log(Entry{Provider: "edge-tts", Text: "handshake", Status: 429, Err: errors.New("rate limited")})

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "edge-tts voice=en-US-AvaNeural took=1.5s ok\n    Up next, the news.\n")
	assert.Contains(t, string(data), `edge-tts status=429 error="rate limited"`)
}

func TestLog_Disabled(t *testing.T) {
	dir := t.TempDir()
	SetLogPath("")
	t.Cleanup(func() { SetLogPath("logs/tts.log") })

	Log(Entry{Provider: "edge-tts", Text: "ignored"})

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFormatEntry(t *testing.T) {
	at := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	got := formatEntry(at, Entry{Provider: "edge-tts", Text: "line one\nline two"})
	assert.Equal(t, "2026-10-18T09:30:00Z edge-tts ok\n    line one\n    line two\n", got)
}
