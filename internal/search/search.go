// Package search implements the naive full-text search behind /api/search.
package search

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"quill/internal/domain/content"
)

const (
	MaxResults  = 10
	MinQueryLen = 2

	contextBefore = 40
	contextAfter  = 60
)

type Result struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Excerpt string `json:"excerpt,omitempty"`
}

// Search matches query case-insensitively against each item's serialized
// front matter and body. Results are ordered by excerpt length, shortest
// first; this is a placeholder ordering, not a relevance score.
func Search(items []content.Item, query string) []Result {
	q := lower(strings.TrimSpace(query))
	if utf8.RuneCountInString(q) < MinQueryLen {
		return []Result{}
	}

	results := make([]Result, 0)
	for _, it := range items {
		if !strings.Contains(lower(haystack(it)), q) {
			continue
		}
		results = append(results, Result{
			Title:   it.Title,
			Slug:    it.Slug,
			Excerpt: excerptFor(it, q),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return utf8.RuneCountInString(results[i].Excerpt) < utf8.RuneCountInString(results[j].Excerpt)
	})
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

func haystack(it content.Item) string {
	meta, err := json.Marshal(it.Fields)
	if err != nil {
		return fmt.Sprint(it.Fields) + " " + it.Body
	}
	return string(meta) + " " + it.Body
}

// excerptFor prefers an author supplied summary, then falls back to a window
// of the body around the first match. q must already be lowercased.
func excerptFor(it content.Item, q string) string {
	for _, s := range []string{it.Description, it.Summary, it.Excerpt} {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return Window(it.Body, q)
}

// Window cuts the text from contextBefore runes ahead of the first match of q
// to contextAfter runes past its end. It returns "" when q does not occur.
func Window(body, q string) string {
	lb := lower(body)
	at := strings.Index(lb, q)
	if at < 0 {
		return ""
	}

	runes := []rune(body)
	idx := utf8.RuneCountInString(lb[:at])
	qlen := utf8.RuneCountInString(q)

	start := idx - contextBefore
	if start < 0 {
		start = 0
	}
	end := idx + qlen + contextAfter
	if end > len(runes) {
		end = len(runes)
	}
	return strings.ReplaceAll(string(runes[start:end]), "\n", " ")
}

// lower maps rune by rune so offsets in the result line up with the input.
func lower(s string) string {
	return strings.Map(unicode.ToLower, s)
}
