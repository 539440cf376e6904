// Package tracker counts upstream calls and cache lookups per provider.
package tracker

import (
	"sync"
	"sync/atomic"
	"time"
)

// Tracker is safe for concurrent use; the zero value is not, use New.
type Tracker struct {
	counters sync.Map // provider -> *counters
}

type counters struct {
	cacheHits, cacheMisses atomic.Int64
	success, failures      atomic.Int64
	latencySum, latencyMax atomic.Int64 // ms
}

// ProviderStats is a point-in-time copy of one provider's counters.
type ProviderStats struct {
	CacheHits    int64 `json:"cache_hits"`
	CacheMisses  int64 `json:"cache_misses"`
	APISuccess   int64 `json:"api_success"`
	APIFailures  int64 `json:"api_failures"`
	LatencyTotal int64 `json:"latency_total_ms"`
	LatencyMax   int64 `json:"latency_max_ms"`
}

// AvgLatency is the mean latency of successful calls.
func (s ProviderStats) AvgLatency() time.Duration {
	if s.APISuccess == 0 {
		return 0
	}
	return time.Duration(s.LatencyTotal/s.APISuccess) * time.Millisecond
}

func New() *Tracker {
	return &Tracker{}
}

func (t *Tracker) of(provider string) *counters {
	if c, ok := t.counters.Load(provider); ok {
		return c.(*counters)
	}
	c, _ := t.counters.LoadOrStore(provider, &counters{})
	return c.(*counters)
}

func (t *Tracker) TrackCacheHit(provider string)   { t.of(provider).cacheHits.Add(1) }
func (t *Tracker) TrackCacheMiss(provider string)  { t.of(provider).cacheMisses.Add(1) }
func (t *Tracker) TrackAPIFailure(provider string) { t.of(provider).failures.Add(1) }

// TrackAPISuccess counts a successful call that took took.
func (t *Tracker) TrackAPISuccess(provider string, took time.Duration) {
	c := t.of(provider)
	ms := took.Milliseconds()
	c.success.Add(1)
	c.latencySum.Add(ms)
	for cur := c.latencyMax.Load(); ms > cur; cur = c.latencyMax.Load() {
		if c.latencyMax.CompareAndSwap(cur, ms) {
			break
		}
	}
}

// Snapshot copies the counters of every provider seen so far.
func (t *Tracker) Snapshot() map[string]ProviderStats {
	out := make(map[string]ProviderStats)
	t.counters.Range(func(k, v any) bool {
		c := v.(*counters)
		out[k.(string)] = ProviderStats{
			CacheHits:    c.cacheHits.Load(),
			CacheMisses:  c.cacheMisses.Load(),
			APISuccess:   c.success.Load(),
			APIFailures:  c.failures.Load(),
			LatencyTotal: c.latencySum.Load(),
			LatencyMax:   c.latencyMax.Load(),
		}
		return true
	})
	return out
}
