package render

import (
	"bytes"
	"strconv"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"quill/internal/domain/content"
)

type MarkdownRenderer struct {
	md goldmark.Markdown
}

func NewMarkdownRenderer() *MarkdownRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
			extension.Strikethrough,
			extension.Table,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	return &MarkdownRenderer{md: md}
}

type MarkdownResult struct {
	HTML []byte
	// TOC lists headings of level 2 to 6 in document order.
	TOC []content.Heading
}

func (r *MarkdownRenderer) Render(src []byte) (MarkdownResult, error) {
	var buf bytes.Buffer

	ctx := parser.NewContext(parser.WithIDs(newHeadingIDs()))
	reader := text.NewReader(src)
	doc := r.md.Parser().Parse(reader, parser.WithContext(ctx))

	var toc []content.Heading
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		if h.Level < 2 {
			return ast.WalkSkipChildren, nil
		}
		var idStr string
		if id, ok := h.AttributeString("id"); ok {
			switch v := id.(type) {
			case string:
				idStr = v
			case []byte:
				idStr = string(v)
			}
		}
		toc = append(toc, content.Heading{
			Level: h.Level,
			ID:    idStr,
			Text:  strings.TrimSpace(nodeText(h, src)),
		})
		return ast.WalkSkipChildren, nil
	})

	if err := r.md.Renderer().Render(&buf, src, doc); err != nil {
		return MarkdownResult{}, err
	}
	return MarkdownResult{
		HTML: buf.Bytes(),
		TOC:  toc,
	}, nil
}

func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(src))
			if v.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(nodeText(c, src))
		}
	}
	return b.String()
}

// headingIDs implements parser.IDs with the anchor rules shared by the
// rendered HTML and the table of contents.
type headingIDs struct {
	seen map[string]int
}

func newHeadingIDs() *headingIDs {
	return &headingIDs{seen: make(map[string]int)}
}

func (s *headingIDs) Generate(value []byte, kind ast.NodeKind) []byte {
	id := AnchorID(string(value))
	if id == "" {
		id = "heading"
	}
	n, dup := s.seen[id]
	if !dup {
		s.seen[id] = 1
		return []byte(id)
	}
	// 后缀也可能与已有标题撞上，继续往后找
	for ; ; n++ {
		cand := id + "-" + strconv.Itoa(n)
		if _, taken := s.seen[cand]; !taken {
			s.seen[id] = n + 1
			s.seen[cand] = 1
			return []byte(cand)
		}
	}
}

func (s *headingIDs) Put(value []byte) {
	s.seen[string(value)]++
}

// AnchorID lowercases s, strips characters other than letters, digits,
// '_', '-' and whitespace, turns whitespace runs into '-' and collapses
// repeated '-'.
func AnchorID(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	lastDash := false
	inSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			inSpace = true
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
		default:
			continue
		}
		if inSpace && b.Len() > 0 {
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
		inSpace = false
		if r == '-' {
			if lastDash {
				continue
			}
			lastDash = true
		} else {
			lastDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
