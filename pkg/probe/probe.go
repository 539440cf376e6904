// Package probe runs startup checks against the collaborators the mixer
// depends on and decides whether the server may start.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds each check.
const DefaultTimeout = 5 * time.Second

// CheckFunc returns nil when the check passes.
type CheckFunc func(ctx context.Context) error

// Probe is a single named check. A failed Critical probe blocks startup.
type Probe struct {
	Name     string
	Check    CheckFunc
	Critical bool
}

// Result is the outcome of one probe.
type Result struct {
	Probe    Probe
	Error    error
	Duration time.Duration
}

// OK reports whether the check passed.
func (r Result) OK() bool { return r.Error == nil }

// Run executes all probes concurrently, each under its own timeout (zero means
// DefaultTimeout). Results keep the order of probes.
func Run(ctx context.Context, probes []Probe, timeout time.Duration) []Result {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	results := make([]Result, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Go(func() {
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := time.Now()
			err := p.Check(checkCtx)
			results[i] = Result{Probe: p, Error: err, Duration: time.Since(start)}
		})
	}
	wg.Wait()
	return results
}

// AnalyzeResults logs each result and returns the joined errors of failed
// critical probes, or nil.
func AnalyzeResults(results []Result) error {
	var critical []error
	passed := 0

	for _, r := range results {
		took := r.Duration.Round(time.Millisecond)
		if r.OK() {
			passed++
			slog.Info("Startup check passed", "probe", r.Probe.Name, "took", took)
			continue
		}

		slog.Error("Startup check failed", "probe", r.Probe.Name, "critical", r.Probe.Critical, "took", took, "error", r.Error)
		if r.Probe.Critical {
			critical = append(critical, fmt.Errorf("%s: %w", r.Probe.Name, r.Error))
		}
	}

	slog.Info("Startup checks done", "passed", passed, "total", len(results))
	return errors.Join(critical...)
}
