package store

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nueslify/pkg/db"
	"nueslify/pkg/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := NewSQLiteStore(d)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStore_Cache(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, hit := s.GetCache(ctx, "missing")
	assert.False(t, hit)

	payload := bytes.Repeat([]byte("top tracks "), 200)
	require.NoError(t, s.SetCache(ctx, "k", payload))

	got, hit := s.GetCache(ctx, "k")
	require.True(t, hit)
	assert.Equal(t, payload, got)

	// Stored compressed
	var raw []byte
	require.NoError(t, s.db.QueryRow("SELECT value FROM cache WHERE key = 'k'").Scan(&raw))
	assert.Less(t, len(raw), len(payload))
}

func TestSQLiteStore_News(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := &NewsItem{Title: "Old", Body: "yesterday", CreatedAt: now.Add(-30 * time.Hour)}
	mid := &NewsItem{Title: "Mid", Body: "this morning", CreatedAt: now.Add(-2 * time.Hour)}
	fresh := &NewsItem{Title: "Fresh", Body: "just now", Source: "api", CreatedAt: now.Add(-time.Minute)}
	for _, it := range []*NewsItem{old, mid, fresh} {
		require.NoError(t, s.SaveNews(ctx, it))
		assert.NotZero(t, it.ID)
	}

	items, err := s.LatestNews(ctx, now.Add(-24*time.Hour), 5)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Fresh", items[0].Title)
	assert.Equal(t, "api", items[0].Source)
	assert.Equal(t, "Mid", items[1].Title)

	one, err := s.LatestNews(ctx, time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "just now", one[0].Body)
}

func TestSQLiteStore_Transitions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	tr := &model.TransitionArtifact{
		ID:                "abc",
		Variant:           model.TransitionBridge,
		From:              model.SegmentKindMusic,
		To:                model.SegmentKindNews,
		Script:            "And now, the news.",
		AudioPath:         "/tmp/abc.mp3",
		Format:            "mp3",
		Duration:          4200 * time.Millisecond,
		GenerationLatency: 1500 * time.Millisecond,
		CreatedAt:         time.Now(),
	}
	require.NoError(t, s.SaveTransition(ctx, tr))

	got, err := s.GetTransition(ctx, "abc")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, tr.Script, got.Script)
	assert.Equal(t, model.TransitionBridge, got.Variant)
	assert.Equal(t, model.SegmentKindMusic, got.From)
	assert.Equal(t, tr.Duration, got.Duration)
	assert.Equal(t, "/tmp/abc.mp3", got.AudioPath)

	missing, err := s.GetTransition(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	recent, err := s.RecentTransitions(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, recent, 1)
}
