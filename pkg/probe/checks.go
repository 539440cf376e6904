package probe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// HealthChecker is anything that can verify its upstream, such as an LLM provider.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// TemplateSet reports whether a named template was loaded.
type TemplateSet interface {
	Has(name string) bool
}

// Upstream wraps a HealthChecker.
func Upstream(name string, hc HealthChecker, critical bool) Probe {
	return Probe{Name: name, Check: hc.HealthCheck, Critical: critical}
}

// WritableDir verifies dir exists (creating it) and accepts files.
func WritableDir(name, dir string) Probe {
	return Probe{
		Name:     name,
		Critical: true,
		Check: func(ctx context.Context) error {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}
			f, err := os.CreateTemp(dir, ".probe-*")
			if err != nil {
				return err
			}
			path := f.Name()
			f.Close()
			return os.Remove(filepath.Clean(path))
		},
	}
}

// Templates verifies every named prompt template is present.
func Templates(set TemplateSet, names ...string) Probe {
	return Probe{
		Name:     "prompts",
		Critical: true,
		Check: func(ctx context.Context) error {
			var missing []string
			for _, n := range names {
				if !set.Has(n) {
					missing = append(missing, n)
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing templates: %v", missing)
			}
			return nil
		},
	}
}
