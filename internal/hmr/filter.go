package hmr

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

// Filter decides which paths receive instrumentation.
type Filter struct {
	root    string
	ext     *regexp.Regexp
	exclude []string
}

// NewFilter builds a filter for files under root whose path matches the
// extensions expression and none of the doublestar exclude globs. Globs are
// matched against the slash-separated path relative to root.
func NewFilter(root, extensions string, exclude []string) (*Filter, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "resolve source root").Fatal().Build()
	}
	ext, err := regexp.Compile(extensions)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "invalid extension pattern").
			WithContext("pattern", extensions).Fatal().Build()
	}
	for _, p := range exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, ferrors.ConfigError("invalid exclude glob").WithContext("pattern", p).Build()
		}
	}
	return &Filter{root: abs, ext: ext, exclude: append([]string(nil), exclude...)}, nil
}

// Root returns the absolute watched-source root.
func (f *Filter) Root() string { return f.root }

// IsEligible reports whether path should be instrumented. Relative paths are
// never eligible because they cannot be placed under the root.
func (f *Filter) IsEligible(path string) bool {
	if !f.ext.MatchString(path) {
		return false
	}
	rel, ok := f.relative(path)
	if !ok {
		return false
	}
	for _, pattern := range f.exclude {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return false
		}
	}
	return true
}

// Contains reports whether path lies under the root, ignoring extension and exclusions.
func (f *Filter) Contains(path string) bool {
	_, ok := f.relative(path)
	return ok
}

func (f *Filter) relative(path string) (string, bool) {
	if !filepath.IsAbs(path) {
		return "", false
	}
	rel, err := filepath.Rel(f.root, filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
