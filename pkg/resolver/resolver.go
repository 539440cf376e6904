// Package resolver builds the content payload for the next segment.
package resolver

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"nueslify/pkg/logging"
	"nueslify/pkg/model"
	"nueslify/pkg/sampler"
)

// Default bounds for how many tracks a music segment holds.
const (
	DefaultCountMin = 1
	DefaultCountMax = 4
)

// TopTracksProvider returns the listener's top tracks for an access token.
type TopTracksProvider interface {
	TopTracks(ctx context.Context, accessToken string) ([]model.SongRecord, error)
}

// Summarizer turns raw news text into a news segment.
type Summarizer interface {
	Summarize(ctx context.Context, rawText string) (*model.NewsSegment, error)
}

// Resolver gathers content for music and news segments.
// Collaborator errors are returned as-is; retries belong to the collaborators.
type Resolver struct {
	tracks     TopTracksProvider
	summarizer Summarizer
	sampler    *sampler.Sampler
	countMin   int
	countMax   int
}

// New creates a Resolver. Non-positive bounds fall back to 1..4.
func New(tracks TopTracksProvider, summarizer Summarizer, s *sampler.Sampler, countMin, countMax int) *Resolver {
	if countMin <= 0 {
		countMin = DefaultCountMin
	}
	if countMax < countMin {
		countMax = max(DefaultCountMax, countMin)
	}
	return &Resolver{
		tracks:     tracks,
		summarizer: summarizer,
		sampler:    s,
		countMin:   countMin,
		countMax:   countMax,
	}
}

// ResolveMusic fetches the top-tracks pool and samples a short run from it.
func (r *Resolver) ResolveMusic(ctx context.Context, accessToken string) ([]model.Track, error) {
	songs, err := r.tracks.TopTracks(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	pool := lo.UniqBy(songs, func(s model.SongRecord) string { return s.ID })
	k := r.sampler.IntRange(r.countMin, r.countMax)
	n := min(k, len(pool))

	picked, err := sampler.Sample(r.sampler, pool, n)
	if err != nil {
		return nil, err
	}

	logging.Trace(nil, "Resolver: sampled tracks", "pool", len(pool), "duplicates", len(songs)-len(pool), "drawn", k, "picked", n)

	return lo.Map(picked, func(s model.SongRecord, _ int) model.Track {
		return s.ToTrack()
	}), nil
}

// ResolveNews summarizes the raw news text.
func (r *Resolver) ResolveNews(ctx context.Context, rawText string) (*model.NewsSegment, error) {
	news, err := r.summarizer.Summarize(ctx, rawText)
	if err != nil {
		return nil, err
	}
	slog.Debug("Resolver: news summarized", "raw_len", len(rawText), "summary_len", len(news.Summary))
	return news, nil
}
