package watch

import (
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// shouldIgnoreEvent returns true for files that never trigger rebuilds.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}

// ignoreSet answers whether a path is excluded by .gitignore files found
// under root (nested ignore files included).
type ignoreSet struct {
	root    string
	matcher gitignore.Matcher
}

func loadIgnoreSet(root string) (*ignoreSet, error) {
	patterns, err := gitignore.ReadPatterns(osfs.New(root), nil)
	if err != nil {
		return nil, err
	}
	return &ignoreSet{root: root, matcher: gitignore.NewMatcher(patterns)}, nil
}

func (s *ignoreSet) Ignored(path string, isDir bool) bool {
	if s == nil {
		return false
	}
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return false
	}
	return s.matcher.Match(strings.Split(filepath.ToSlash(rel), "/"), isDir)
}
