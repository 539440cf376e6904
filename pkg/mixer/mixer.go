// Package mixer decides what plays after the current segment and requests the
// transition that bridges the two.
//
// The mixer keeps no state between calls: the player passes the segment it is
// currently playing on every call, and owns everything that is returned.
package mixer

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"nueslify/pkg/model"
)

// DefaultPlaceholderNews is the "from" side of a news-to-music transition.
const DefaultPlaceholderNews = "Great news from all around the world"

// ErrNoTransition is returned when the generator reports success without an
// artifact.
var ErrNoTransition = errors.New("transition generator returned no artifact")

// ContentResolver gathers the payload of the next segment.
type ContentResolver interface {
	ResolveMusic(ctx context.Context, accessToken string) ([]model.Track, error)
	ResolveNews(ctx context.Context, rawText string) (*model.NewsSegment, error)
}

// TransitionGenerator produces transition artifacts. Start is used when nothing
// has played yet.
type TransitionGenerator interface {
	Start(ctx context.Context, to model.Segment) (*model.TransitionArtifact, error)
	Bridge(ctx context.Context, from, to model.Segment) (*model.TransitionArtifact, error)
}

// NewsSource supplies the raw news text that gets summarized.
type NewsSource interface {
	RawNews(ctx context.Context) (string, error)
}

// Mixer is the segment state machine.
type Mixer struct {
	resolver        ContentResolver
	transitions     TransitionGenerator
	news            NewsSource
	placeholderNews string
}

// New creates a Mixer. An empty placeholder uses DefaultPlaceholderNews.
func New(r ContentResolver, tg TransitionGenerator, ns NewsSource, placeholderNews string) *Mixer {
	if placeholderNews == "" {
		placeholderNews = DefaultPlaceholderNews
	}
	return &Mixer{
		resolver:        r,
		transitions:     tg,
		news:            ns,
		placeholderNews: placeholderNews,
	}
}

// Mix returns the next segment and the transition leading into it.
//
//	nil   -> music, start transition
//	news  -> music, bridge from a placeholder news segment
//	music -> news,  bridge from the current music segment
//
// Collaborator errors are returned unchanged and no partial result is produced.
func (m *Mixer) Mix(ctx context.Context, current model.Segment, accessToken string) (*model.MixerResult, error) {
	start := time.Now()

	var res *model.MixerResult
	if current == nil {
		r, err := m.toMusic(ctx, nil, accessToken)
		if err != nil {
			return nil, err
		}
		res = r
	} else {
		if err := model.ValidSegment(current); err != nil {
			return nil, err
		}
		step := &mixStep{m: m, ctx: ctx, token: accessToken}
		if err := current.Accept(step); err != nil {
			return nil, err
		}
		res = step.result
	}

	slog.Info("Mixer: next segment ready",
		"from", fromLabel(current),
		"to", res.NextKind(),
		"tracks", len(res.MusicIDs),
		"transition", res.Transition.ID,
		"took", time.Since(start))
	return res, nil
}

// toMusic resolves music content. from is the transition's "from" side; nil
// requests a start transition.
func (m *Mixer) toMusic(ctx context.Context, from model.Segment, accessToken string) (*model.MixerResult, error) {
	tracks, err := m.resolver.ResolveMusic(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	music := model.NewMusicSegment(tracks)

	var tr *model.TransitionArtifact
	if from == nil {
		tr, err = m.transitions.Start(ctx, music)
	} else {
		tr, err = m.transitions.Bridge(ctx, from, music)
	}
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrNoTransition
	}

	return &model.MixerResult{Transition: tr, MusicIDs: music.TrackIDs()}, nil
}

func (m *Mixer) toNews(ctx context.Context, current *model.MusicSegment) (*model.MixerResult, error) {
	raw, err := m.news.RawNews(ctx)
	if err != nil {
		return nil, err
	}

	news, err := m.resolver.ResolveNews(ctx, raw)
	if err != nil {
		return nil, err
	}

	tr, err := m.transitions.Bridge(ctx, current, news)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, ErrNoTransition
	}

	return &model.MixerResult{Transition: tr, News: news}, nil
}

// mixStep dispatches on the current segment's kind.
type mixStep struct {
	m      *Mixer
	ctx    context.Context
	token  string
	result *model.MixerResult
}

func (s *mixStep) VisitMusic(cur *model.MusicSegment) error {
	res, err := s.m.toNews(s.ctx, cur)
	s.result = res
	return err
}

// VisitNews deliberately ignores the caller's news segment: the transition is
// bridged from a fresh placeholder.
func (s *mixStep) VisitNews(_ *model.NewsSegment) error {
	placeholder := model.NewNewsSegment(s.m.placeholderNews)
	res, err := s.m.toMusic(s.ctx, placeholder, s.token)
	s.result = res
	return err
}

func fromLabel(seg model.Segment) string {
	if seg == nil {
		return "none"
	}
	return string(seg.Kind())
}
