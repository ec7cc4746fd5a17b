package sitemap

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var gitTimeout = 2 * time.Second

// LastModified returns the last commit time of path, or its mtime when git is
// unavailable or the file is untracked. Zero when neither is known.
func LastModified(ctx context.Context, path string) time.Time {
	if t, ok := gitCommitTime(ctx, path); ok {
		return t
	}
	st, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return st.ModTime()
}

func gitCommitTime(ctx context.Context, path string) (time.Time, bool) {
	ctx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	cmd := exec.CommandContext(ctx, "git", "log", "-1", "--format=%cI", "--", name)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return time.Time{}, false
	}
	s := strings.TrimSpace(string(out))
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
