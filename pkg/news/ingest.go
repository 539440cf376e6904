package news

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/net/html"

	"nueslify/pkg/store"
)

// ErrEmptyNews is returned when an item has no text left after cleaning.
var ErrEmptyNews = errors.New("news body is empty")

// Ingester cleans and stores incoming raw news.
type Ingester struct {
	store store.NewsStore
}

// NewIngester creates an Ingester.
func NewIngester(st store.NewsStore) *Ingester {
	return &Ingester{store: st}
}

// Ingest strips markup from title and body and stores the item.
func (in *Ingester) Ingest(ctx context.Context, title, body, source string) (*store.NewsItem, error) {
	item := &store.NewsItem{
		Title:  StripHTML(title),
		Body:   StripHTML(body),
		Source: source,
	}
	if item.Body == "" {
		return nil, ErrEmptyNews
	}
	if err := in.store.SaveNews(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// skipped elements never contribute text
var skipped = map[string]bool{"script": true, "style": true, "head": true, "noscript": true}

// block elements end a line of text
var block = map[string]bool{"p": true, "br": true, "div": true, "li": true, "h1": true, "h2": true, "h3": true, "h4": true, "tr": true}

// StripHTML returns the visible text of an HTML fragment with whitespace collapsed.
// Plain text passes through unchanged apart from whitespace.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return collapse(s)
	}

	z := html.NewTokenizer(strings.NewReader(s))
	var sb strings.Builder
	depth := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF or malformed input; keep what was read
			return collapse(sb.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipped[tag] && tt == html.StartTagToken {
				depth++
			}
			if block[tag] {
				sb.WriteString("\n")
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skipped[tag] && depth > 0 {
				depth--
			}
			if block[tag] {
				sb.WriteString("\n")
			}
		case html.TextToken:
			if depth == 0 {
				sb.Write(z.Text())
			}
		}
	}
}

// collapse squeezes runs of spaces per line and drops blank lines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, l := range lines {
		if f := strings.Join(strings.Fields(l), " "); f != "" {
			out = append(out, f)
		}
	}
	return strings.Join(out, "\n")
}
