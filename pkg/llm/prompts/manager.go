// Package prompts renders the text/template prompt files sent to the LLM.
package prompts

import (
	"bytes"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"path"
	"strings"
	"text/template"

	"github.com/samber/lo"
)

// commonDir holds {{define}} blocks shared by every template.
const commonDir = "common/"

type Manager struct {
	tmpl *template.Template
}

// NewManager loads the templates below dir.
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("prompts dir: %w", err)
	}
	return NewManagerFS(os.DirFS(dir))
}

// NewManagerFS loads every *.tmpl in fsys. Templates are named by their
// slash path ("news/summary.tmpl"); common/ files only contribute definitions.
func NewManagerFS(fsys fs.FS) (*Manager, error) {
	var shared, named []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		switch {
		case err != nil:
			return err
		case d.IsDir() || path.Ext(p) != ".tmpl":
		case strings.HasPrefix(p, commonDir):
			shared = append(shared, p)
		default:
			named = append(named, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning templates: %w", err)
	}

	root := template.New("").Funcs(template.FuncMap{
		"topics": topicsFunc,
		"maybe":  maybeFunc,
		"pick":   pickFunc,
		"join":   strings.Join,
	})
	// definitions first so named templates can refer to them
	for _, p := range append(shared, named...) {
		src, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		t := root
		if !strings.HasPrefix(p, commonDir) {
			t = root.New(p)
		}
		if _, err := t.Parse(string(src)); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", p, err)
		}
	}
	return &Manager{tmpl: root}, nil
}

func (m *Manager) Has(name string) bool {
	return m.tmpl.Lookup(name) != nil
}

// Render executes name with data and trims surrounding whitespace.
func (m *Manager) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return strings.TrimSpace(buf.String()), nil
}

// topicsFunc lists the listener's topics in random order. From four topics
// on, two are left out so summaries don't always lean the same way.
func topicsFunc(topics []string) string {
	n := len(topics)
	if n >= 4 {
		n -= 2
	}
	return strings.Join(lo.Samples(topics, n), ", ")
}

// maybeFunc returns content with the given probability in percent:
// {{maybe 30 "Mention the time."}}
func maybeFunc(percent int, content string) string {
	if percent >= 100 || (percent > 0 && rand.IntN(100) < percent) {
		return content
	}
	return ""
}

// pickFunc returns one of the "|||"-separated options at random:
// {{pick "Coming up|||Next|||Stay tuned for"}}
func pickFunc(options string) string {
	return strings.TrimSpace(lo.Sample(strings.Split(options, "|||")))
}
