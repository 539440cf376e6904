package probe

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeChecker struct{ err error }

func (f fakeChecker) HealthCheck(context.Context) error { return f.err }

type fakeTemplates map[string]bool

func (f fakeTemplates) Has(name string) bool { return f[name] }

func TestUpstream(t *testing.T) {
	p := Upstream("llm", fakeChecker{err: errors.New("401")}, false)
	assert.Equal(t, "llm", p.Name)
	assert.False(t, p.Critical)
	assert.EqualError(t, p.Check(context.Background()), "401")
}

func TestWritableDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")
	p := WritableDir("audio dir", dir)
	assert.NoError(t, p.Check(context.Background()))

	entries, err := os.ReadDir(dir)
	assert.NoError(t, err)
	assert.Empty(t, entries, "probe file must be cleaned up")

	blocker := filepath.Join(t.TempDir(), "file")
	assert.NoError(t, os.WriteFile(blocker, nil, 0o644))
	assert.Error(t, WritableDir("bad", filepath.Join(blocker, "sub")).Check(context.Background()))
}

func TestTemplates(t *testing.T) {
	set := fakeTemplates{"news/summary.tmpl": true}
	assert.NoError(t, Templates(set, "news/summary.tmpl").Check(context.Background()))

	err := Templates(set, "news/summary.tmpl", "transition/start.tmpl").Check(context.Background())
	assert.ErrorContains(t, err, "transition/start.tmpl")
}
