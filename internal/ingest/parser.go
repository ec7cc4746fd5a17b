package ingest

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"
)

var formats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
}

type FrontMatter struct {
	Title       string     `yaml:"title"`
	Description string     `yaml:"description"`
	Summary     string     `yaml:"summary"`
	Excerpt     string     `yaml:"excerpt"`
	Date        string     `yaml:"date"`
	Image       string     `yaml:"image"`
	Tags        StringList `yaml:"tags"`
	Category    string     `yaml:"category"`
	Draft       bool       `yaml:"draft"`
}

// StringList accepts either a YAML sequence or a single scalar.
type StringList []string

func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*l = nil
			return nil
		}
		*l = StringList{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(value.Content))
		for _, n := range value.Content {
			if n.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: list item must be a scalar", n.Line)
			}
			out = append(out, n.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("line %d: expected a list of strings", value.Line)
	}
}

// ParseFrontMatter splits raw into its typed front matter, the full decoded
// key/value map, and the body. A file without a front matter block is all body.
func ParseFrontMatter(raw []byte) (FrontMatter, map[string]any, []byte, error) {
	// 统一换行符
	norm := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	norm = bytes.ReplaceAll(norm, []byte("\r"), []byte("\n"))

	var fm FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(norm), &fm, formats...)
	if err != nil {
		return FrontMatter{}, nil, nil, err
	}

	fields := make(map[string]any)
	if _, err := frontmatter.Parse(bytes.NewReader(norm), &fields, formats...); err != nil {
		return FrontMatter{}, nil, nil, err
	}
	return fm, fields, body, nil
}

// ParseTime returns the zero time when s is empty or not a recognisable date.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
