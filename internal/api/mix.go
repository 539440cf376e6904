package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"nueslify/pkg/model"
	"nueslify/pkg/sampler"
	"nueslify/pkg/toptracks"
	"nueslify/pkg/tts"
)

// maxMixBody bounds the request body; a music segment carries at most a few tracks.
const maxMixBody = 1 << 20

// Mixer is the part of the mixer the API needs.
type Mixer interface {
	Mix(ctx context.Context, current model.Segment, accessToken string) (*model.MixerResult, error)
}

// MixHandler serves POST /api/mix.
type MixHandler struct {
	mixer Mixer
}

// NewMixHandler creates a MixHandler.
func NewMixHandler(m Mixer) *MixHandler {
	return &MixHandler{mixer: m}
}

type mixRequest struct {
	CurrentSegment json.RawMessage `json:"currentSegment"`
	AccessToken    string          `json:"accessToken"`
}

func (h *MixHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req mixRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxMixBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	current, err := model.DecodeSegment(req.CurrentSegment)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token := req.AccessToken
	if token == "" {
		token = bearerToken(r)
	}

	res, err := h.mixer.Mix(r.Context(), current, token)
	if err != nil {
		status := mixErrorStatus(err)
		slog.Warn("Mix failed", "status", status, "error", err)
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func mixErrorStatus(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidSegmentKind):
		return http.StatusBadRequest
	case errors.Is(err, toptracks.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, sampler.ErrInvalidSampleSize):
		return http.StatusInternalServerError
	case tts.IsFatalError(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}
