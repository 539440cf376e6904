package api

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"github.com/grafov/m3u8"

	"nueslify/pkg/audio"
	"nueslify/pkg/model"
	"nueslify/pkg/transition"
)

// TransitionLookup reads recorded transitions.
type TransitionLookup interface {
	GetTransition(ctx context.Context, id string) (*model.TransitionArtifact, error)
	RecentTransitions(ctx context.Context, limit int) ([]*model.TransitionArtifact, error)
}

// TransitionHandler serves transition metadata and synthesized audio.
type TransitionHandler struct {
	store TransitionLookup
}

// NewTransitionHandler creates a TransitionHandler.
func NewTransitionHandler(st TransitionLookup) *TransitionHandler {
	return &TransitionHandler{store: st}
}

// HandleRecent lists the latest transitions, newest first. ?limit= defaults to 20.
func (h *TransitionHandler) HandleRecent(w http.ResponseWriter, r *http.Request) {
	limit := queryLimit(r, 20, 100)
	items, err := h.store.RecentTransitions(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list transitions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transitions")
		return
	}
	if items == nil {
		items = []*model.TransitionArtifact{}
	}
	for _, t := range items {
		withAudioURL(t)
	}
	writeJSON(w, http.StatusOK, items)
}

// HandlePlaylist renders the latest voiced transitions as an HLS media
// playlist, oldest first, so they can be auditioned in any player.
func (h *TransitionHandler) HandlePlaylist(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.RecentTransitions(r.Context(), queryLimit(r, 20, 100))
	if err != nil {
		slog.Error("Failed to list transitions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transitions")
		return
	}

	var voiced []*model.TransitionArtifact
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].AudioPath != "" {
			voiced = append(voiced, withAudioURL(items[i]))
		}
	}

	pl, err := m3u8.NewMediaPlaylist(0, uint(max(len(voiced), 1)))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build playlist")
		return
	}
	for _, t := range voiced {
		if err := pl.Append(t.AudioURL, t.Duration.Seconds(), string(t.Variant)+" "+t.ID); err != nil {
			slog.Warn("Playlist full", "error", err)
			break
		}
	}
	pl.Close()

	w.Header().Set("Content-Type", "application/vnd.apple.mpegurl")
	if _, err := w.Write(pl.Encode().Bytes()); err != nil {
		slog.Error("Failed to write playlist", "error", err)
	}
}

// HandleGet returns a single transition.
func (h *TransitionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// HandleAudio streams the synthesized audio of a transition.
func (h *TransitionHandler) HandleAudio(w http.ResponseWriter, r *http.Request) {
	t, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if t.AudioPath == "" {
		writeError(w, http.StatusNotFound, "transition has no audio")
		return
	}

	f, err := os.Open(t.AudioPath)
	if err != nil {
		slog.Warn("Transition audio missing", "id", t.ID, "path", t.AudioPath, "error", err)
		writeError(w, http.StatusNotFound, "audio not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to stat audio")
		return
	}

	w.Header().Set("Content-Type", audio.MimeType(t.Format))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

func (h *TransitionHandler) lookup(w http.ResponseWriter, r *http.Request) (*model.TransitionArtifact, bool) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return nil, false
	}
	t, err := h.store.GetTransition(r.Context(), id)
	if err != nil {
		slog.Error("Failed to load transition", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load transition")
		return nil, false
	}
	if t == nil {
		writeError(w, http.StatusNotFound, "transition not found")
		return nil, false
	}
	return withAudioURL(t), true
}

func withAudioURL(t *model.TransitionArtifact) *model.TransitionArtifact {
	if t.AudioPath != "" && t.AudioURL == "" {
		t.AudioURL = transition.AudioURL(t.ID)
	}
	return t
}

func queryLimit(r *http.Request, def, maxLimit int) int {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return min(n, maxLimit)
}
