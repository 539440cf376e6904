package store

import (
	"bytes"
	"compress/gzip"
	"context"
	"database/sql"
	"errors"
	"io"
	"time"

	"nueslify/pkg/db"
	"nueslify/pkg/model"
)

// Store is everything the server persists. Packages take the narrowest
// sub-interface they need.
type Store interface {
	CacheStore
	NewsStore
	TransitionStore

	Close() error
}

type SQLiteStore struct {
	db *db.DB
}

func NewSQLiteStore(d *db.DB) *SQLiteStore {
	return &SQLiteStore{db: d}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Cache ---

// cache values are gzipped; rows without the gzip magic are returned as stored
var gzipMagic = []byte{0x1f, 0x8b}

func (s *SQLiteStore) GetCache(ctx context.Context, key string) ([]byte, bool) {
	var val []byte
	if err := s.db.QueryRowContext(ctx, "SELECT value FROM cache WHERE key = ?", key).Scan(&val); err != nil {
		return nil, false
	}
	if bytes.HasPrefix(val, gzipMagic) {
		if zr, err := gzip.NewReader(bytes.NewReader(val)); err == nil {
			defer zr.Close()
			if plain, err := io.ReadAll(zr); err == nil {
				return plain, true
			}
		}
	}
	return val, true
}

func (s *SQLiteStore) SetCache(ctx context.Context, key string, val []byte) error {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(val); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO cache (key, value, created_at) VALUES (?, ?, ?)",
		key, buf.Bytes(), time.Now().UTC())
	return err
}

// --- News ---

func (s *SQLiteStore) SaveNews(ctx context.Context, item *NewsItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO news_items (title, body, source, created_at) VALUES (?, ?, ?, ?)`,
		item.Title, item.Body, item.Source, item.CreatedAt.UTC())
	if err != nil {
		return err
	}
	item.ID, err = res.LastInsertId()
	return err
}

// LatestNews returns up to limit items created after since, newest first.
func (s *SQLiteStore) LatestNews(ctx context.Context, since time.Time, limit int) ([]*NewsItem, error) {
	if limit <= 0 {
		limit = 1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, body, source, created_at FROM news_items
		 WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		since.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*NewsItem
	for rows.Next() {
		var it NewsItem
		var title, source sql.NullString
		if err := rows.Scan(&it.ID, &title, &it.Body, &source, &it.CreatedAt); err != nil {
			return nil, err
		}
		it.Title = title.String
		it.Source = source.String
		items = append(items, &it)
	}
	return items, rows.Err()
}

// --- Transitions ---

func (s *SQLiteStore) SaveTransition(ctx context.Context, t *model.TransitionArtifact) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO transitions
		 (id, variant, from_kind, to_kind, script, audio_path, format, duration_ms, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Variant), string(t.From), string(t.To), t.Script, t.AudioPath, t.Format,
		t.Duration.Milliseconds(), t.GenerationLatency.Milliseconds(), t.CreatedAt.UTC())
	return err
}

// GetTransition returns nil, nil when the id is unknown.
func (s *SQLiteStore) GetTransition(ctx context.Context, id string) (*model.TransitionArtifact, error) {
	row := s.db.QueryRowContext(ctx, transitionSelect+` WHERE id = ?`, id)
	t, err := scanTransition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return t, err
}

func (s *SQLiteStore) RecentTransitions(ctx context.Context, limit int) ([]*model.TransitionArtifact, error) {
	rows, err := s.db.QueryContext(ctx, transitionSelect+` ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.TransitionArtifact
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const transitionSelect = `SELECT id, variant, from_kind, to_kind, script, audio_path, format, duration_ms, latency_ms, created_at FROM transitions`

type scanner interface {
	Scan(dest ...any) error
}

func scanTransition(row scanner) (*model.TransitionArtifact, error) {
	var t model.TransitionArtifact
	var variant, from, to string
	var durationMs, latencyMs int64
	if err := row.Scan(&t.ID, &variant, &from, &to, &t.Script, &t.AudioPath, &t.Format, &durationMs, &latencyMs, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Variant = model.TransitionVariant(variant)
	t.From = model.SegmentKind(from)
	t.To = model.SegmentKind(to)
	t.Duration = time.Duration(durationMs) * time.Millisecond
	t.GenerationLatency = time.Duration(latencyMs) * time.Millisecond
	return &t, nil
}
