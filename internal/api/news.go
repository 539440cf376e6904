package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"nueslify/pkg/news"
	"nueslify/pkg/store"
)

// NewsIngester stores raw news items.
type NewsIngester interface {
	Ingest(ctx context.Context, title, body, source string) (*store.NewsItem, error)
}

// NewsHandler accepts raw news and lists what is stored.
type NewsHandler struct {
	ingester NewsIngester
	store    store.NewsStore
	maxAge   time.Duration
}

// NewNewsHandler creates a NewsHandler. maxAge <= 0 lists items of any age.
func NewNewsHandler(in NewsIngester, st store.NewsStore, maxAge time.Duration) *NewsHandler {
	return &NewsHandler{ingester: in, store: st, maxAge: maxAge}
}

type newsRequest struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	Source string `json:"source"`
}

// HandleIngest serves POST /api/news.
func (h *NewsHandler) HandleIngest(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMixBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	item, err := h.ingester.Ingest(r.Context(), req.Title, req.Body, req.Source)
	if err != nil {
		if errors.Is(err, news.ErrEmptyNews) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		slog.Error("Failed to store news", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to store news")
		return
	}

	slog.Info("News ingested", "id", item.ID, "source", item.Source)
	writeJSON(w, http.StatusCreated, item)
}

// HandleLatest serves GET /api/news/latest.
func (h *NewsHandler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if h.maxAge > 0 {
		since = time.Now().Add(-h.maxAge)
	}

	items, err := h.store.LatestNews(r.Context(), since, queryLimit(r, 10, 100))
	if err != nil {
		slog.Error("Failed to list news", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list news")
		return
	}
	if items == nil {
		items = []*store.NewsItem{}
	}
	writeJSON(w, http.StatusOK, items)
}
