package resolver

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nueslify/pkg/model"
	"nueslify/pkg/sampler"
)

type stubTracks struct {
	songs []model.SongRecord
	err   error
	token string
}

func (s *stubTracks) TopTracks(ctx context.Context, accessToken string) ([]model.SongRecord, error) {
	s.token = accessToken
	return s.songs, s.err
}

type stubSummarizer struct {
	out *model.NewsSegment
	err error
	raw string
}

func (s *stubSummarizer) Summarize(ctx context.Context, rawText string) (*model.NewsSegment, error) {
	s.raw = rawText
	return s.out, s.err
}

func songs(n int) []model.SongRecord {
	out := make([]model.SongRecord, n)
	for i := range out {
		out[i] = model.SongRecord{ID: fmt.Sprintf("id-%d", i), Name: fmt.Sprintf("Song %d", i)}
	}
	return out
}

func newSampler(seed int64) *sampler.Sampler {
	return sampler.New(rand.New(rand.NewSource(seed)))
}

func TestResolveMusic_CountWithinRange(t *testing.T) {
	pool := songs(10)
	tp := &stubTracks{songs: pool}
	r := New(tp, nil, newSampler(5), 1, 4)

	ids := lo.Map(pool, func(s model.SongRecord, _ int) string { return s.ID })
	for i := 0; i < 200; i++ {
		tracks, err := r.ResolveMusic(context.Background(), "tok")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(tracks), 1)
		assert.LessOrEqual(t, len(tracks), 4)

		got := lo.Map(tracks, func(t model.Track, _ int) string { return t.ID })
		assert.Len(t, lo.Uniq(got), len(got))
		assert.Subset(t, ids, got)
	}
	assert.Equal(t, "tok", tp.token)
}

func TestResolveMusic_ClampsToSmallPool(t *testing.T) {
	r := New(&stubTracks{songs: songs(2)}, nil, newSampler(11), 1, 4)

	for i := 0; i < 100; i++ {
		tracks, err := r.ResolveMusic(context.Background(), "tok")
		require.NoError(t, err, "clamp must keep the sampler precondition")
		assert.LessOrEqual(t, len(tracks), 2)
	}
}

func TestResolveMusic_EmptyPool(t *testing.T) {
	r := New(&stubTracks{songs: nil}, nil, newSampler(1), 1, 4)

	tracks, err := r.ResolveMusic(context.Background(), "tok")
	require.NoError(t, err)
	assert.NotNil(t, tracks)
	assert.Empty(t, tracks)
}

func TestResolveMusic_DuplicateIDsInPool(t *testing.T) {
	pool := []model.SongRecord{
		{ID: "a", Name: "A"}, {ID: "a", Name: "A"}, {ID: "a", Name: "A"},
		{ID: "b", Name: "B"}, {ID: "b", Name: "B"},
	}
	r := New(&stubTracks{songs: pool}, nil, newSampler(3), 4, 4)

	for i := 0; i < 50; i++ {
		tracks, err := r.ResolveMusic(context.Background(), "tok")
		require.NoError(t, err)
		got := lo.Map(tracks, func(t model.Track, _ int) string { return t.ID })
		assert.ElementsMatch(t, []string{"a", "b"}, got)
	}
}

func TestResolveMusic_TranslatesRecords(t *testing.T) {
	pool := []model.SongRecord{{ID: "x", Name: "Only", ArtistNames: nil}}
	r := New(&stubTracks{songs: pool}, nil, newSampler(1), 1, 1)

	tracks, err := r.ResolveMusic(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, tracks, 1)
	assert.Equal(t, "x", tracks[0].ID)
	assert.Equal(t, "Only", tracks[0].Title)
	assert.NotNil(t, tracks[0].ArtistNames)
	assert.Empty(t, tracks[0].ArtistNames)
}

func TestResolveMusic_ProviderErrorUnchanged(t *testing.T) {
	authErr := errors.New("401 unauthorized")
	r := New(&stubTracks{err: authErr}, nil, newSampler(1), 1, 4)

	_, err := r.ResolveMusic(context.Background(), "bad")
	assert.Same(t, authErr, err)
}

func TestResolveNews(t *testing.T) {
	sum := &stubSummarizer{out: model.NewNewsSegment("Today's headlines...")}
	r := New(&stubTracks{}, sum, newSampler(1), 0, 0)

	news, err := r.ResolveNews(context.Background(), "raw text")
	require.NoError(t, err)
	assert.Equal(t, "Today's headlines...", news.Summary)
	assert.Equal(t, "raw text", sum.raw)
}

func TestResolveNews_ErrorUnchanged(t *testing.T) {
	llmErr := errors.New("quota exceeded")
	r := New(&stubTracks{}, &stubSummarizer{err: llmErr}, newSampler(1), 0, 0)

	_, err := r.ResolveNews(context.Background(), "raw")
	assert.Same(t, llmErr, err)
}

func TestNew_DefaultBounds(t *testing.T) {
	r := New(nil, nil, newSampler(1), 0, 0)
	assert.Equal(t, DefaultCountMin, r.countMin)
	assert.Equal(t, DefaultCountMax, r.countMax)
}
