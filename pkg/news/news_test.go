package news

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nueslify/pkg/db"
	"nueslify/pkg/store"
)

func newStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	d, err := db.Init(filepath.Join(t.TempDir(), "news.db"))
	require.NoError(t, err)
	st := store.NewSQLiteStore(d)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  Rates   unchanged. ", "Rates unchanged."},
		{"paragraphs", "<p>First story.</p><p>Second <b>story</b>.</p>", "First story.\nSecond story."},
		{"entities", "Ben &amp; Jerry&#39;s", "Ben & Jerry's"},
		{"script dropped", "<div>News<script>alert('x')</script><style>p{}</style> here</div>", "News here"},
		{"br", "line one<br/>line two", "line one\nline two"},
		{"empty", "<p> </p>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.in))
		})
	}
}

func TestIngest(t *testing.T) {
	st := newStore(t)
	in := NewIngester(st)

	item, err := in.Ingest(context.Background(), "<h1>Launch</h1>", "<p>The rocket <em>lifted off</em>.</p>", "api")
	require.NoError(t, err)
	assert.NotZero(t, item.ID)
	assert.Equal(t, "Launch", item.Title)
	assert.Equal(t, "The rocket lifted off.", item.Body)

	_, err = in.Ingest(context.Background(), "t", "<script>x()</script>", "api")
	assert.ErrorIs(t, err, ErrEmptyNews)
}

func TestStoreSource_Fallback(t *testing.T) {
	src := NewStoreSource(newStore(t), "", 24*time.Hour)
	text, err := src.RawNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultFallbackText, text)

	text, err = NewStoreSource(nil, "Quiet day.", 0).RawNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Quiet day.", text)
}

func TestStoreSource_Latest(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, st.SaveNews(ctx, &store.NewsItem{Title: "Stale", Body: "old", CreatedAt: now.Add(-48 * time.Hour)}))
	require.NoError(t, st.SaveNews(ctx, &store.NewsItem{Title: "Markets", Body: "Stocks rose.", CreatedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, st.SaveNews(ctx, &store.NewsItem{Body: "Rain later.", CreatedAt: now.Add(-time.Hour)}))

	src := NewStoreSource(st, "fallback", 24*time.Hour)
	text, err := src.RawNews(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Rain later.\n\nMarkets. Stocks rose.", text)
}

type failingStore struct{ store.NewsStore }

func (failingStore) LatestNews(context.Context, time.Time, int) ([]*store.NewsItem, error) {
	return nil, errors.New("db locked")
}

func TestStoreSource_Error(t *testing.T) {
	_, err := NewStoreSource(failingStore{}, "", 0).RawNews(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db locked")
}
