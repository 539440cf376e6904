package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nueslify/pkg/tracker"
	"nueslify/pkg/version"
)

func TestServer_Health(t *testing.T) {
	srv := NewServer(":0", Handlers{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestServer_Version(t *testing.T) {
	srv := NewServer(":0", Handlers{}, nil)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, version.Version, body["version"])
}

func TestServer_UnroutedGroups(t *testing.T) {
	srv := NewServer(":0", Handlers{}, nil)

	for _, path := range []string{"/api/mix", "/api/news", "/api/shutdown"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestServer_Shutdown(t *testing.T) {
	done := make(chan struct{})
	srv := NewServer(":0", Handlers{}, func() { close(done) })

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/shutdown", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	<-done
}

func TestStatsHandler(t *testing.T) {
	tr := tracker.New()
	tr.TrackCacheHit("gemini")
	tr.TrackCacheMiss("gemini")
	tr.TrackCacheMiss("gemini")
	tr.TrackCacheMiss("gemini")
	tr.TrackAPISuccess("gemini", 200_000_000)
	tr.TrackAPISuccess("gemini", 400_000_000)
	tr.TrackAPIFailure("spotify")

	srv := NewServer(":0", Handlers{Stats: NewStatsHandler(tr, "gemini", "edge-tts")}, nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gemini", resp.LLM)
	assert.Equal(t, "edge-tts", resp.TTS)
	assert.Positive(t, resp.Runtime.Goroutines)
	require.Len(t, resp.Diagnostics, 1)
	assert.Equal(t, "Server", resp.Diagnostics[0].Name)
	assert.GreaterOrEqual(t, resp.Diagnostics[0].MemoryMaxMB, resp.Diagnostics[0].MemoryMB)

	g := resp.Providers["gemini"]
	assert.Equal(t, int64(25), g.HitRate)
	assert.Equal(t, int64(2), g.APISuccess)
	assert.Equal(t, int64(300), g.AvgLatencyMS)
	assert.Equal(t, int64(400), g.MaxLatencyMS)
	assert.Equal(t, int64(1), resp.Providers["spotify"].APIFailures)
}
