package manifest

import (
	"path"
	"sort"
	"strings"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

// Change is one logical key whose public URL is new or different.
type Change struct {
	Key string
	URL string
}

// Resolver turns output paths into URLs served from the public directory.
type Resolver struct {
	publicDir string
}

// NewResolver takes the public directory relative to the project root.
func NewResolver(publicDir string) Resolver {
	dir := strings.Trim(path.Clean(strings.ReplaceAll(publicDir, "\\", "/")), "/")
	if dir == "." {
		dir = ""
	}
	return Resolver{publicDir: dir}
}

// URL strips the public directory prefix and roots the result at "/".
func (r Resolver) URL(outputPath string) string {
	p := strings.TrimPrefix(path.Clean(strings.ReplaceAll(outputPath, "\\", "/")), "/")
	if r.publicDir != "" {
		p = strings.TrimPrefix(p, r.publicDir+"/")
	}
	return "/" + p
}

// Resolve maps every logical key in m to its URL.
func (r Resolver) Resolve(m Metadata) map[string]string {
	urls := make(map[string]string, len(m))
	for k, d := range m {
		urls[k] = r.URL(d.OutputPath)
	}
	return urls
}

// Locate returns the app and hmr entry descriptors.
func Locate(m Metadata) (app, hmr OutputDescriptor, err error) {
	app, okApp := m[AppEntry]
	hmr, okHMR := m[HMREntry]
	if okApp && okHMR {
		return app, hmr, nil
	}
	missing := make([]string, 0, 2)
	if !okApp {
		missing = append(missing, AppEntry)
	}
	if !okHMR {
		missing = append(missing, HMREntry)
	}
	return OutputDescriptor{}, OutputDescriptor{}, ferrors.ConfigError("build output is missing a required entry").
		WithContext("missing", strings.Join(missing, ",")).
		Build()
}

// Diff lists the keys of next whose URL is absent from or different in
// prev, sorted by key. A nil prev yields every key.
func Diff(prev, next map[string]string) []Change {
	changes := make([]Change, 0)
	for k, url := range next {
		if old, ok := prev[k]; ok && old == url {
			continue
		}
		changes = append(changes, Change{Key: k, URL: url})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Key < changes[j].Key })
	return changes
}
