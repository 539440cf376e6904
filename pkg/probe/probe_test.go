package probe

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	minor := errors.New("minor issue")
	probes := []Probe{
		{Name: "database", Critical: true, Check: func(context.Context) error { return nil }},
		{Name: "llm", Check: func(context.Context) error { return minor }},
		{Name: "slow but fine", Check: func(context.Context) error {
			time.Sleep(10 * time.Millisecond)
			return nil
		}},
	}

	results := Run(context.Background(), probes, 0)

	require.Len(t, results, 3)
	assert.Equal(t, "database", results[0].Probe.Name)
	assert.True(t, results[0].OK())
	assert.ErrorIs(t, results[1].Error, minor)
	assert.True(t, results[2].OK())
	assert.GreaterOrEqual(t, results[2].Duration, 10*time.Millisecond)
}

func TestRun_Concurrent(t *testing.T) {
	slow := func(context.Context) error {
		time.Sleep(100 * time.Millisecond)
		return nil
	}
	probes := []Probe{{Name: "a", Check: slow}, {Name: "b", Check: slow}, {Name: "c", Check: slow}}

	start := time.Now()
	Run(context.Background(), probes, 0)
	assert.Less(t, time.Since(start), 250*time.Millisecond)
}

func TestRun_Timeout(t *testing.T) {
	probes := []Probe{{
		Name: "slow upstream",
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}}

	start := time.Now()
	results := Run(context.Background(), probes, 20*time.Millisecond)

	assert.ErrorIs(t, results[0].Error, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAnalyzeResults(t *testing.T) {
	fail := errors.New("fail")
	tests := []struct {
		name    string
		results []Result
		wantErr bool
	}{
		{"no probes", nil, false},
		{"all pass", []Result{{Probe: Probe{Name: "P1", Critical: true}}}, false},
		{"critical failure", []Result{{Probe: Probe{Name: "P1", Critical: true}, Error: fail}}, true},
		{"non-critical failure", []Result{{Probe: Probe{Name: "P1"}, Error: fail}}, false},
		{"mixed", []Result{
			{Probe: Probe{Name: "P1"}, Error: fail},
			{Probe: Probe{Name: "P2", Critical: true}, Error: fail},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AnalyzeResults(tt.results)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, fail)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestAnalyzeResults_NamesFailedProbe(t *testing.T) {
	err := AnalyzeResults([]Result{{Probe: Probe{Name: "prompts", Critical: true}, Error: errors.New("missing templates")}})
	assert.EqualError(t, err, "prompts: missing templates")
}
