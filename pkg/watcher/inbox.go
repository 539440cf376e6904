// Package watcher turns files dropped into a directory into stored news items.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"nueslify/pkg/news"
	"nueslify/pkg/store"
)

// ProcessedDir receives files after they were ingested.
const ProcessedDir = "processed"

const source = "inbox"

// Ingester stores one raw news item.
type Ingester interface {
	Ingest(ctx context.Context, title, body, source string) (*store.NewsItem, error)
}

// Inbox monitors a directory for .txt and .html news files.
type Inbox struct {
	dir      string
	ingester Ingester
	settle   time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewInbox creates the directory (and its processed/ subdirectory) if missing.
func NewInbox(dir string, in Ingester) (*Inbox, error) {
	if err := os.MkdirAll(filepath.Join(dir, ProcessedDir), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox: %w", err)
	}
	return &Inbox{
		dir:      dir,
		ingester: in,
		settle:   250 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Scan ingests every news file already sitting in the inbox.
func (b *Inbox) Scan(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, entry := range entries {
		if entry.IsDir() || !isNewsFile(entry.Name()) {
			continue
		}
		if err := b.ingestFile(ctx, filepath.Join(b.dir, entry.Name())); err != nil {
			slog.Warn("Inbox: Failed to ingest file", "file", entry.Name(), "error", err)
			continue
		}
		n++
	}
	return n, nil
}

// Run scans once and then watches the inbox until ctx is done.
// Writes are debounced so a file is read only after it stopped changing.
func (b *Inbox) Run(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()

	if err := w.Add(b.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", b.dir, err)
	}

	if n, err := b.Scan(ctx); err != nil {
		slog.Warn("Inbox: Initial scan failed", "dir", b.dir, "error", err)
	} else if n > 0 {
		slog.Info("Inbox: Ingested waiting files", "count", n)
	}

	slog.Info("Inbox: Watching for news", "dir", b.dir)
	for {
		select {
		case <-ctx.Done():
			b.stopPending()
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isNewsFile(event.Name) {
				continue
			}
			b.schedule(ctx, event.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Inbox: Watch error", "error", err)
		}
	}
}

func (b *Inbox) schedule(ctx context.Context, path string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if t, ok := b.pending[path]; ok {
		t.Reset(b.settle)
		return
	}
	b.pending[path] = time.AfterFunc(b.settle, func() {
		b.mu.Lock()
		delete(b.pending, path)
		b.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		if err := b.ingestFile(ctx, path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			slog.Warn("Inbox: Failed to ingest file", "file", filepath.Base(path), "error", err)
		}
	})
}

func (b *Inbox) stopPending() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for path, t := range b.pending {
		t.Stop()
		delete(b.pending, path)
	}
}

func (b *Inbox) ingestFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	title, body := splitNewsFile(filepath.Base(path), string(data))
	item, err := b.ingester.Ingest(ctx, title, body, source)
	if err != nil {
		if errors.Is(err, news.ErrEmptyNews) {
			// nothing worth keeping, but don't pick it up again
			return b.archive(path)
		}
		return err
	}

	slog.Info("Inbox: News ingested", "file", filepath.Base(path), "id", item.ID)
	return b.archive(path)
}

func (b *Inbox) archive(path string) error {
	dst := filepath.Join(b.dir, ProcessedDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(path)))
	return os.Rename(path, dst)
}

func isNewsFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".html", ".htm":
		return !strings.HasPrefix(filepath.Base(name), ".")
	}
	return false
}

// splitNewsFile derives a title and body. Text files use their first line as
// the title when more follows; everything else is titled after the file name.
func splitNewsFile(name, content string) (title, body string) {
	fallback := strings.TrimSuffix(name, filepath.Ext(name))
	fallback = strings.NewReplacer("_", " ", "-", " ").Replace(fallback)

	if strings.EqualFold(filepath.Ext(name), ".txt") {
		content = strings.TrimLeft(content, "\r\n\t ")
		if first, rest, ok := strings.Cut(content, "\n"); ok && strings.TrimSpace(rest) != "" {
			return strings.TrimSpace(first), rest
		}
	}
	return fallback, content
}
