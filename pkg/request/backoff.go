package request

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// ProviderBackoff holds back requests to providers that recently failed.
// Each failure adds a strike and pushes the provider's next slot out
// exponentially; each success removes a strike.
type ProviderBackoff struct {
	base    time.Duration
	ceiling time.Duration
	now     func() time.Time
	jitter  func() float64 // [0, 1)

	mu        sync.Mutex
	penalties map[string]*penalty
}

type penalty struct {
	strikes int
	until   time.Time
}

// NewProviderBackoff creates a backoff with delays in [base, ceiling] plus up to 10% jitter.
func NewProviderBackoff(base, ceiling time.Duration) *ProviderBackoff {
	return &ProviderBackoff{
		base:      base,
		ceiling:   ceiling,
		now:       time.Now,
		jitter:    rand.Float64,
		penalties: make(map[string]*penalty),
	}
}

// Delay reports how long a request to provider still has to wait.
func (b *ProviderBackoff) Delay(provider string) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.penalties[provider]
	if !ok {
		return 0
	}
	return max(p.until.Sub(b.now()), 0)
}

// Strikes returns the provider's current failure count.
func (b *ProviderBackoff) Strikes(provider string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if p, ok := b.penalties[provider]; ok {
		return p.strikes
	}
	return 0
}

// Wait blocks until provider may be called again or ctx ends.
func (b *ProviderBackoff) Wait(ctx context.Context, provider string) error {
	d := b.Delay(provider)
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RecordFailure adds a strike. A positive retryAfter (from the upstream
// Retry-After header) wins when it is longer than the computed delay.
func (b *ProviderBackoff) RecordFailure(provider string, retryAfter time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.penalties[provider]
	if !ok {
		p = &penalty{}
		b.penalties[provider] = p
	}
	p.strikes++
	p.until = b.now().Add(max(b.delayFor(p.strikes), retryAfter))
}

// RecordSuccess removes a strike; the provider is released once none remain.
func (b *ProviderBackoff) RecordSuccess(provider string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.penalties[provider]
	if !ok {
		return
	}
	p.strikes--
	if p.strikes <= 0 {
		delete(b.penalties, provider)
	}
}

func (b *ProviderBackoff) delayFor(strikes int) time.Duration {
	d := b.ceiling
	if shift := strikes - 1; shift < 32 {
		if v := b.base << shift; v > 0 && v < b.ceiling {
			d = v
		}
	}
	return d + time.Duration(b.jitter()*0.1*float64(d))
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
func parseRetryAfter(h string, now time.Time) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}
	if t, err := http.ParseTime(h); err == nil {
		return max(t.Sub(now), 0)
	}
	return 0
}
