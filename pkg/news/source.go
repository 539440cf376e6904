// Package news supplies the raw text that the summarizer turns into a bulletin.
package news

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"nueslify/pkg/store"
)

// DefaultFallbackText is served when no recent news has been ingested.
const DefaultFallbackText = "A long news string with every piece of information you could ever want."

// StoreSource implements mixer.NewsSource from ingested items.
type StoreSource struct {
	store    store.NewsStore
	fallback string
	maxAge   time.Duration
	maxItems int
	now      func() time.Time
}

// NewStoreSource creates a source reading items no older than maxAge (0 = any age).
func NewStoreSource(st store.NewsStore, fallback string, maxAge time.Duration) *StoreSource {
	if fallback == "" {
		fallback = DefaultFallbackText
	}
	return &StoreSource{
		store:    st,
		fallback: fallback,
		maxAge:   maxAge,
		maxItems: 5,
		now:      time.Now,
	}
}

// RawNews joins the newest items into one text block, or returns the fallback text.
func (s *StoreSource) RawNews(ctx context.Context) (string, error) {
	if s.store == nil {
		return s.fallback, nil
	}
	var since time.Time
	if s.maxAge > 0 {
		since = s.now().Add(-s.maxAge)
	}
	items, err := s.store.LatestNews(ctx, since, s.maxItems)
	if err != nil {
		return "", fmt.Errorf("load news: %w", err)
	}
	if len(items) == 0 {
		slog.Debug("News: no recent items, using fallback text")
		return s.fallback, nil
	}

	var sb strings.Builder
	for i, it := range items {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if it.Title != "" {
			sb.WriteString(it.Title)
			sb.WriteString(". ")
		}
		sb.WriteString(it.Body)
	}
	return sb.String(), nil
}
