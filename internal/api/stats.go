package api

import (
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"nueslify/pkg/tracker"
)

type componentState struct {
	lastCPUSec float64
	lastTime   time.Time
	maxMem     uint64
	maxCPU     float64
}

// StatsHandler reports per-provider counters and process figures.
type StatsHandler struct {
	tracker *tracker.Tracker
	started time.Time
	llmName string
	ttsName string

	mu    sync.Mutex
	proc  *process.Process
	state *componentState
}

// NewStatsHandler creates a StatsHandler. llm and tts name the active engines.
func NewStatsHandler(t *tracker.Tracker, llm, tts string) *StatsHandler {
	h := &StatsHandler{tracker: t, started: time.Now(), llmName: llm, ttsName: tts}
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		slog.Warn("Process stats unavailable", "error", err)
	} else {
		h.proc = proc
	}
	return h
}

type ProviderStatsDTO struct {
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	APISuccess   int64 `json:"api_success"`
	APIFailures  int64 `json:"api_errors"`
	HitRate      int64 `json:"hit_rate"`
	AvgLatencyMS int64 `json:"avg_latency_ms"`
	MaxLatencyMS int64 `json:"max_latency_ms"`
}

type ComponentStats struct {
	Name        string  `json:"name"`
	MemoryMB    uint64  `json:"memory_mb"`
	MemoryMaxMB uint64  `json:"memory_max_mb"`
	CPUSec      float64 `json:"cpu_sec"`     // Seconds per second
	CPUMaxSec   float64 `json:"cpu_max_sec"` // Peak
}

type RuntimeStats struct {
	UptimeSec  int64  `json:"uptime_sec"`
	MemoryMB   uint64 `json:"memory_mb"`
	Goroutines int    `json:"goroutines"`
}

type StatsResponse struct {
	Diagnostics []ComponentStats            `json:"diagnostics"`
	Runtime     RuntimeStats                `json:"runtime"`
	LLM         string                      `json:"llm"`
	TTS         string                      `json:"tts"`
	Providers   map[string]ProviderStatsDTO `json:"providers"`
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	h.mu.Lock()
	diagnostics := h.gatherDiagnostics()
	h.mu.Unlock()

	resp := StatsResponse{
		Diagnostics: diagnostics,
		Runtime: RuntimeStats{
			UptimeSec:  int64(time.Since(h.started).Seconds()),
			MemoryMB:   bToMb(mem.Alloc),
			Goroutines: runtime.NumGoroutine(),
		},
		LLM:         h.llmName,
		TTS:         h.ttsName,
		Providers:   make(map[string]ProviderStatsDTO),
	}

	for provider, stats := range h.tracker.Snapshot() {
		resp.Providers[provider] = toProviderDTO(stats)
	}

	writeJSON(w, http.StatusOK, resp)
}

// gatherDiagnostics samples the server process. CPU is the delta since the
// previous request, in CPU seconds per wall second.
func (h *StatsHandler) gatherDiagnostics() []ComponentStats {
	if h.proc == nil {
		return []ComponentStats{}
	}

	now := time.Now()
	var cpuTotal float64
	if times, err := h.proc.Times(); err == nil {
		cpuTotal = times.User + times.System
	}
	var rss uint64
	if mem, err := h.proc.MemoryInfo(); err == nil {
		rss = mem.RSS
	}

	if h.state == nil {
		h.state = &componentState{lastTime: h.started}
	}
	st := h.state

	cpuSec := 0.0
	if elapsed := now.Sub(st.lastTime).Seconds(); elapsed > 0 {
		cpuSec = max(cpuTotal-st.lastCPUSec, 0) / elapsed
	}

	st.lastCPUSec = cpuTotal
	st.lastTime = now
	st.maxMem = max(st.maxMem, rss)
	st.maxCPU = max(st.maxCPU, cpuSec)

	return []ComponentStats{{
		Name:        "Server",
		MemoryMB:    bToMb(rss),
		MemoryMaxMB: bToMb(st.maxMem),
		CPUSec:      cpuSec,
		CPUMaxSec:   st.maxCPU,
	}}
}

func toProviderDTO(stats tracker.ProviderStats) ProviderStatsDTO {
	totalCache := stats.CacheHits + stats.CacheMisses
	hitRate := int64(0)
	if totalCache > 0 {
		hitRate = (stats.CacheHits * 100) / totalCache
	}
	return ProviderStatsDTO{
		CacheHits:    stats.CacheHits,
		CacheMisses:  stats.CacheMisses,
		APISuccess:   stats.APISuccess,
		APIFailures:  stats.APIFailures,
		HitRate:      hitRate,
		AvgLatencyMS: stats.AvgLatency().Milliseconds(),
		MaxLatencyMS: stats.LatencyMax,
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
