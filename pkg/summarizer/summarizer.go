// Package summarizer turns raw news text into a spoken news segment.
package summarizer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"nueslify/pkg/cache"
	"nueslify/pkg/llm"
	"nueslify/pkg/llm/prompts"
	"nueslify/pkg/model"
)

// TemplateName is the prompt rendered for every summary.
const TemplateName = "news/summary.tmpl"

// ErrEmptySummary is returned when the model produced no usable text.
var ErrEmptySummary = errors.New("summary is empty")

// Options tune the prompt.
type Options struct {
	Station  string
	Topics   []string
	MaxWords int
}

// Summarizer implements resolver.Summarizer on top of an LLM.
type Summarizer struct {
	llm     llm.Provider
	prompts *prompts.Manager
	cache   cache.Cacher
	opts    Options
}

// New creates a Summarizer. A nil cache disables caching.
func New(p llm.Provider, pm *prompts.Manager, c cache.Cacher, opts Options) *Summarizer {
	if c == nil {
		c = cache.Noop{}
	}
	if opts.MaxWords <= 0 {
		opts.MaxWords = 120
	}
	return &Summarizer{llm: p, prompts: pm, cache: c, opts: opts}
}

type promptData struct {
	Station  string
	Topics   []string
	MaxWords int
	RawText  string
}

// Summarize returns a news segment for rawText. Identical input is served from cache.
func (s *Summarizer) Summarize(ctx context.Context, rawText string) (*model.NewsSegment, error) {
	rawText = strings.TrimSpace(rawText)
	if rawText == "" {
		return nil, fmt.Errorf("no news to summarize")
	}

	key := cacheKey(rawText)
	if val, hit := s.cache.GetCache(ctx, key); hit && len(val) > 0 {
		slog.Debug("Summarizer: cache hit", "key", key)
		return model.NewNewsSegment(string(val)), nil
	}

	prompt, err := s.prompts.Render(TemplateName, promptData{
		Station:  s.opts.Station,
		Topics:   s.opts.Topics,
		MaxWords: s.opts.MaxWords,
		RawText:  rawText,
	})
	if err != nil {
		return nil, fmt.Errorf("render summary prompt: %w", err)
	}

	out, err := s.llm.GenerateText(ctx, llm.ProfileNewsSummary, prompt)
	if err != nil {
		return nil, err
	}
	summary := llm.CleanSpoken(out)
	if summary == "" {
		return nil, ErrEmptySummary
	}

	if err := s.cache.SetCache(ctx, key, []byte(summary)); err != nil {
		slog.Warn("Summarizer: failed to cache summary", "error", err)
	}
	slog.Info("Summarizer: news summarized", "raw_chars", len(rawText), "summary_chars", len(summary))
	return model.NewNewsSegment(summary), nil
}

func cacheKey(rawText string) string {
	sum := sha256.Sum256([]byte(rawText))
	return "summary:" + hex.EncodeToString(sum[:8])
}
