package content

import (
	"regexp"
	"strings"
	"time"
)

const DefaultCategory = "Uncategorized"

// Item is one post parsed from the content directory. Items are rebuilt from
// the files on every read and never mutated afterwards.
type Item struct {
	Slug        string
	Title       string
	Description string
	Summary     string
	Excerpt     string

	// Date is the raw front matter value; Published is its parsed form and
	// stays zero when the value is missing or unparsable.
	Date      string
	Published time.Time

	Tags     []string
	Category string
	Image    string
	Draft    bool

	Body string

	// Fields holds every decoded front matter key, including unknown ones.
	Fields map[string]any

	SourcePath string
	ModTime    time.Time
}

type Heading struct {
	Level int
	ID    string
	Text  string
}

func (it *Item) HasDate() bool {
	return !it.Published.IsZero()
}

func (it *Item) Normalize() {
	it.Title = strings.TrimSpace(it.Title)
	if it.Title == "" {
		it.Title = it.Slug
	}
	it.Description = strings.TrimSpace(it.Description)
	it.Category = strings.TrimSpace(it.Category)
	if it.Category == "" {
		it.Category = DefaultCategory
	}
	it.Tags = NormalizeTags(it.Tags)
}

// NormalizeTags trims, lowercases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = NormalizeTag(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

func NormalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}

var slugPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ValidSlug reports whether s is usable as a filename stem.
func ValidSlug(s string) bool {
	return slugPattern.MatchString(s)
}
