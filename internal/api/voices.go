package api

import (
	"log/slog"
	"net/http"

	"nueslify/pkg/tts"
)

// VoicesHandler lists the voices of the configured TTS engine.
type VoicesHandler struct {
	tts tts.Provider
}

// NewVoicesHandler accepts a nil provider; the list is then empty.
func NewVoicesHandler(p tts.Provider) *VoicesHandler {
	return &VoicesHandler{tts: p}
}

func (h *VoicesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.tts == nil {
		writeJSON(w, http.StatusOK, []tts.Voice{})
		return
	}

	voices, err := h.tts.Voices(r.Context())
	if err != nil {
		slog.Warn("Failed to list voices", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	if voices == nil {
		voices = []tts.Voice{}
	}
	writeJSON(w, http.StatusOK, voices)
}
