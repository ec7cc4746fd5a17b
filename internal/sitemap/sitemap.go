package sitemap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"quill/internal/domain/site"
)

const xmlns = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []entry  `xml:"url"`
}

type entry struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// Build renders routes as a sitemaps.org urlset. baseURL has no trailing slash.
func Build(baseURL string, routes []site.Route) ([]byte, error) {
	set := urlset{Xmlns: xmlns, URLs: make([]entry, 0, len(routes))}
	for _, r := range routes {
		e := entry{
			Loc:        baseURL + r.Path,
			ChangeFreq: r.ChangeFreq,
		}
		if r.Path == "/" {
			e.Loc = baseURL
		}
		if !r.LastModified.IsZero() {
			e.LastMod = r.LastModified.UTC().Format(time.RFC3339)
		}
		if r.Priority > 0 {
			e.Priority = strconv.FormatFloat(r.Priority, 'f', 1, 64)
		}
		set.URLs = append(set.URLs, e)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return nil, fmt.Errorf("encode sitemap: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func Robots(baseURL string, disallowAll bool) []byte {
	var buf bytes.Buffer
	buf.WriteString("User-agent: *\n")
	if disallowAll {
		buf.WriteString("Disallow: /\n")
	} else {
		buf.WriteString("Allow: /\n")
	}
	fmt.Fprintf(&buf, "\nSitemap: %s/sitemap.xml\n", baseURL)
	return buf.Bytes()
}
