// Package transition writes and voices the short host lines played between segments.
package transition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"nueslify/pkg/audio"
	"nueslify/pkg/llm"
	"nueslify/pkg/llm/prompts"
	"nueslify/pkg/model"
	"nueslify/pkg/store"
	"nueslify/pkg/tts"
)

// Prompt templates, relative to the prompts dir.
const (
	StartTemplate  = "transition/start.tmpl"
	BridgeTemplate = "transition/bridge.tmpl"
)

// ErrEmptyScript is returned when the model produced nothing to say.
var ErrEmptyScript = errors.New("transition script is empty")

// Config holds generator settings.
type Config struct {
	Station  string
	Voice    string
	AudioDir string
	MaxWords int
}

// Generator implements mixer.TransitionGenerator.
type Generator struct {
	llm     llm.Provider
	prompts *prompts.Manager
	tts     tts.Provider // nil: text-only transitions
	store   store.TransitionStore
	cfg     Config

	duration func(path string) (time.Duration, error)
	newID    func() string
	now      func() time.Time
}

// New creates a Generator. ttsProvider and st may be nil.
func New(p llm.Provider, pm *prompts.Manager, ttsProvider tts.Provider, st store.TransitionStore, cfg Config) *Generator {
	if cfg.MaxWords <= 0 {
		cfg.MaxWords = 40
	}
	return &Generator{
		llm:      p,
		prompts:  pm,
		tts:      ttsProvider,
		store:    st,
		cfg:      cfg,
		duration: audio.GetDuration,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// AudioURL is where the API serves a transition's audio.
func AudioURL(id string) string {
	return "/api/transitions/" + id + "/audio"
}

// Start introduces the first segment of a session.
func (g *Generator) Start(ctx context.Context, to model.Segment) (*model.TransitionArtifact, error) {
	if err := model.ValidSegment(to); err != nil {
		return nil, err
	}
	data := g.baseData()
	data.To = to.Kind()
	if err := to.Accept(&collector{data: data, target: "to"}); err != nil {
		return nil, err
	}
	return g.generate(ctx, model.TransitionStart, "", to.Kind(), StartTemplate, data)
}

// Bridge links the segment that just played to the next one.
func (g *Generator) Bridge(ctx context.Context, from, to model.Segment) (*model.TransitionArtifact, error) {
	if err := model.ValidSegment(from); err != nil {
		return nil, err
	}
	if err := model.ValidSegment(to); err != nil {
		return nil, err
	}
	data := g.baseData()
	data.From = from.Kind()
	data.To = to.Kind()
	if err := from.Accept(&collector{data: data, target: "from"}); err != nil {
		return nil, err
	}
	if err := to.Accept(&collector{data: data, target: "to"}); err != nil {
		return nil, err
	}
	return g.generate(ctx, model.TransitionBridge, from.Kind(), to.Kind(), BridgeTemplate, data)
}

func (g *Generator) generate(ctx context.Context, variant model.TransitionVariant, from, to model.SegmentKind, tmpl string, data *promptData) (*model.TransitionArtifact, error) {
	start := g.now()

	prompt, err := g.prompts.Render(tmpl, data)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", tmpl, err)
	}

	out, err := g.llm.GenerateText(ctx, llm.ProfileTransition, prompt)
	if err != nil {
		return nil, err
	}
	script := llm.CleanSpoken(tts.StripSpeakerLabels(out))
	if script == "" {
		return nil, ErrEmptyScript
	}

	t := &model.TransitionArtifact{
		ID:        g.newID(),
		Variant:   variant,
		From:      from,
		To:        to,
		Script:    script,
		CreatedAt: start,
	}

	if g.tts != nil {
		if err := g.synthesize(ctx, t); err != nil {
			return nil, err
		}
	}
	t.GenerationLatency = g.now().Sub(start)

	if g.store != nil {
		if err := g.store.SaveTransition(ctx, t); err != nil {
			slog.Warn("Transition: failed to record artifact", "id", t.ID, "error", err)
		}
	}

	slog.Info("Transition: generated",
		"id", t.ID,
		"variant", variant,
		"from", from,
		"to", to,
		"audio", t.Format != "",
		"duration", t.Duration,
		"took", t.GenerationLatency)
	return t, nil
}

func (g *Generator) synthesize(ctx context.Context, t *model.TransitionArtifact) error {
	if err := os.MkdirAll(g.cfg.AudioDir, 0o755); err != nil {
		return fmt.Errorf("audio dir: %w", err)
	}
	path := filepath.Join(g.cfg.AudioDir, t.ID+".mp3")
	format, err := g.tts.Synthesize(ctx, t.Script, g.cfg.Voice, path)
	if err != nil {
		return err
	}
	t.AudioPath = path
	t.Format = format
	t.AudioURL = AudioURL(t.ID)

	d, err := g.duration(path)
	if err != nil {
		slog.Warn("Transition: could not measure audio", "path", path, "error", err)
	}
	t.Duration = d
	return nil
}

type trackLine struct {
	Title       string
	ArtistNames []string
}

type promptData struct {
	Station  string
	MaxWords int
	From     model.SegmentKind
	To       model.SegmentKind

	FromTracks  []trackLine
	FromSummary string
	ToTracks    []trackLine
	ToSummary   string

	// Tracks mirrors ToTracks for the start template.
	Tracks []trackLine
}

func (g *Generator) baseData() *promptData {
	return &promptData{Station: g.cfg.Station, MaxWords: g.cfg.MaxWords}
}

// collector copies segment content into the prompt data, on the side named by target.
type collector struct {
	data   *promptData
	target string
}

func (c *collector) VisitMusic(s *model.MusicSegment) error {
	lines := lo.Map(s.Tracks, func(t model.Track, _ int) trackLine {
		return trackLine{Title: t.Title, ArtistNames: t.ArtistNames}
	})
	if c.target == "from" {
		c.data.FromTracks = lines
	} else {
		c.data.ToTracks = lines
		c.data.Tracks = lines
	}
	return nil
}

func (c *collector) VisitNews(s *model.NewsSegment) error {
	if c.target == "from" {
		c.data.FromSummary = s.Summary
	} else {
		c.data.ToSummary = s.Summary
	}
	return nil
}
