package hmr

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFilter(t *testing.T) (*Filter, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "app")
	f, err := NewFilter(root, `\.[tj]sx?$`, []string{"**/node_modules/**", "**/vendor/**", "**/*.d.ts"})
	require.NoError(t, err)
	return f, root
}

func TestFilter_IsEligible(t *testing.T) {
	f, root := newTestFilter(t)

	cases := []struct {
		path string
		want bool
	}{
		{filepath.Join(root, "App.tsx"), true},
		{filepath.Join(root, "routes", "index.jsx"), true},
		{filepath.Join(root, "util.ts"), true},
		{filepath.Join(root, "legacy.js"), true},
		{filepath.Join(root, "styles.css"), false},
		{filepath.Join(root, "README.md"), false},
		{filepath.Join(root, "types", "global.d.ts"), false},
		{filepath.Join(root, "node_modules", "react", "index.js"), false},
		{filepath.Join(root, "lib", "vendor", "chart.js"), false},
		{filepath.Join(filepath.Dir(root), "server.ts"), false},
		{filepath.Join(root, "..", "outside.tsx"), false},
		{"app/App.tsx", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, f.IsEligible(c.path), c.path)
	}
}

func TestFilter_Deterministic(t *testing.T) {
	f, root := newTestFilter(t)
	p := filepath.Join(root, "components", "Button.tsx")
	first := f.IsEligible(p)
	for range 10 {
		assert.Equal(t, first, f.IsEligible(p))
	}
}

func TestFilter_Contains(t *testing.T) {
	f, root := newTestFilter(t)
	assert.True(t, f.Contains(filepath.Join(root, "styles.css")))
	assert.False(t, f.Contains(root))
	assert.False(t, f.Contains(filepath.Join(filepath.Dir(root), "x.ts")))
}

func TestNewFilter_RejectsBadPatterns(t *testing.T) {
	_, err := NewFilter(t.TempDir(), "(", nil)
	require.Error(t, err)
	_, err = NewFilter(t.TempDir(), `\.ts$`, []string{"[oops"})
	require.Error(t, err)
}
