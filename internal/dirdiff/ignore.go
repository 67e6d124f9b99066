package dirdiff

import (
	"log/slog"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// ignoreMatcher decides which relative paths to skip during discovery.
// Gitignore rules come from .gitignore files found anywhere under the root;
// exclude globs are user supplied and apply even when gitignore handling is
// turned off.
type ignoreMatcher struct {
	gitignore gitignore.Matcher
	excludes  []string
}

func newIgnoreMatcher(root string, includeIgnored bool, excludes []string) *ignoreMatcher {
	m := &ignoreMatcher{excludes: excludes}
	if includeIgnored {
		return m
	}
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		slog.Debug("read gitignore patterns", slog.String("root", root), slog.Any("error", err))
		return m
	}
	if len(patterns) > 0 {
		m.gitignore = gitignore.NewMatcher(patterns)
	}
	return m
}

// Ignored reports whether rel (slash-separated, relative to the root) should
// be skipped. Directories that match prune their whole subtree.
func (m *ignoreMatcher) Ignored(rel string, isDir bool) bool {
	if rel == "" {
		return false
	}
	if m.gitignore != nil && m.gitignore.Match(strings.Split(rel, "/"), isDir) {
		return true
	}
	for _, pattern := range m.excludes {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		// Bare patterns match the basename at any depth, like gitignore.
		if !strings.Contains(pattern, "/") {
			if ok, _ := doublestar.Match("**/"+pattern, rel); ok {
				return true
			}
		}
	}
	return false
}
