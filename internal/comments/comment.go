package comments

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"quill/internal/domain/content"
	domainerr "quill/internal/domain/errors"
)

const (
	MaxAuthorLen  = 100
	MaxContentLen = 5000
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type Comment struct {
	ID       string `json:"id"`
	Slug     string `json:"slug"`
	Author   string `json:"author"`
	Email    string `json:"email"`
	Content  string `json:"content"`
	Date     string `json:"date"`
	Approved bool   `json:"approved"`
}

// Input is the unsanitized submission as received from a client.
type Input struct {
	Slug    string `json:"slug"`
	Author  string `json:"author"`
	Email   string `json:"email"`
	Content string `json:"content"`
}

// New validates in and returns a fresh, unapproved comment. Validation stops
// at the first failing constraint.
func New(in Input, now time.Time) (Comment, error) {
	slug := strings.TrimSpace(in.Slug)
	author := strings.TrimSpace(in.Author)
	email := strings.TrimSpace(in.Email)
	body := strings.TrimSpace(in.Content)

	var ve domainerr.ValidationError
	switch {
	case slug == "" || author == "" || email == "" || body == "":
		ve.Add("", "Missing required fields")
	case !emailPattern.MatchString(email):
		ve.Add("email", "Invalid email format")
	case !content.ValidSlug(slug):
		ve.Add("slug", "Invalid slug")
	}
	if ve.HasAny() {
		return Comment{}, ve
	}

	return Comment{
		ID:       uuid.NewString(),
		Slug:     slug,
		Author:   truncate(author, MaxAuthorLen),
		Email:    strings.ToLower(email),
		Content:  truncate(body, MaxContentLen),
		Date:     now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Approved: false,
	}, nil
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
