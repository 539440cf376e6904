package store

import (
	"context"
	"time"

	"nueslify/pkg/model"
)

// CacheStore handles generic key-value caching.
type CacheStore interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// NewsItem is one raw news text waiting to be summarized.
type NewsItem struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewsStore holds ingested raw news.
type NewsStore interface {
	SaveNews(ctx context.Context, item *NewsItem) error
	LatestNews(ctx context.Context, since time.Time, limit int) ([]*NewsItem, error)
}

// TransitionStore records generated transitions so their audio can be served later.
type TransitionStore interface {
	SaveTransition(ctx context.Context, t *model.TransitionArtifact) error
	GetTransition(ctx context.Context, id string) (*model.TransitionArtifact, error)
	RecentTransitions(ctx context.Context, limit int) ([]*model.TransitionArtifact, error)
}
