package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"nueslify/pkg/version"
)

// Handlers bundles the endpoint groups. Nil groups are not routed.
type Handlers struct {
	Mix         *MixHandler
	Transitions *TransitionHandler
	News        *NewsHandler
	Stats       *StatsHandler
	Voices      *VoicesHandler
}

// NewServer creates and configures the HTTP server.
func NewServer(addr string, h Handlers, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	if h.Stats != nil {
		mux.Handle("GET /api/stats", h.Stats)
	}

	if h.Voices != nil {
		mux.Handle("GET /api/voices", h.Voices)
	}

	if h.Mix != nil {
		mux.Handle("POST /api/mix", h.Mix)
	}

	if h.Transitions != nil {
		mux.HandleFunc("GET /api/transitions", h.Transitions.HandleRecent)
		mux.HandleFunc("GET /api/transitions/playlist.m3u8", h.Transitions.HandlePlaylist)
		mux.HandleFunc("GET /api/transitions/{id}", h.Transitions.HandleGet)
		mux.HandleFunc("GET /api/transitions/{id}/audio", h.Transitions.HandleAudio)
	}

	if h.News != nil {
		mux.HandleFunc("POST /api/news", h.News.HandleIngest)
		mux.HandleFunc("GET /api/news/latest", h.News.HandleLatest)
	}

	if shutdown != nil {
		mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
			slog.Info("Graceful shutdown initiated via API")
			w.WriteHeader(http.StatusOK)
			if _, err := w.Write([]byte("Shutting down...")); err != nil {
				slog.Error("Failed to write shutdown response", "error", err)
			}
			// let the response flush first
			go func() {
				time.Sleep(100 * time.Millisecond)
				shutdown()
			}()
		})
	}

	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // transitions wait on LLM and TTS
		IdleTimeout:  60 * time.Second,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": %q}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
