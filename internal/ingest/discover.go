package ingest

import (
	"os"
	"path/filepath"
	"strings"
)

type SourceFile struct {
	Path string
	Slug string
	Ext  string
}

// DiscoverSource lists the content files directly under root, in directory
// order. Sub-directories and dot files are ignored. A missing root is an
// empty collection.
func DiscoverSource(root string, exts []string) ([]SourceFile, error) {
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var out []SourceFile
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		ext := matchExt(e.Name(), exts)
		if ext == "" {
			continue
		}
		out = append(out, SourceFile{
			Path: filepath.Join(root, e.Name()),
			Slug: e.Name()[:len(e.Name())-len(ext)],
			Ext:  ext,
		})
	}
	return out, nil
}

func matchExt(name string, exts []string) string {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, strings.ToLower(ext)) && len(name) > len(ext) {
			return ext
		}
	}
	return ""
}

func extRank(ext string, exts []string) int {
	for i, e := range exts {
		if strings.EqualFold(e, ext) {
			return i
		}
	}
	return len(exts)
}
