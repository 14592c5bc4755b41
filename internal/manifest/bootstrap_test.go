package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

func TestBootstrapReferencesEntries(t *testing.T) {
	dir := t.TempDir()
	w := NewBootstrapWriter(filepath.Join(dir, "public", "index.html"), "", "My App")

	wrote, err := w.WriteOnce("/build/app-ABC.js", "/build/hmr-DEF.js")
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, `<script type="module" src="/build/hmr-DEF.js"></script>`)
	assert.Contains(t, doc, `import * as entry from "/build/app-ABC.js";`)
	assert.Contains(t, doc, "entry.run();")
	assert.Contains(t, doc, "<title>My App</title>")
	assert.Less(t, strings.Index(doc, "hmr-DEF.js"), strings.Index(doc, "</body>"))
}

func TestBootstrapWriteOnce(t *testing.T) {
	dir := t.TempDir()
	w := NewBootstrapWriter(filepath.Join(dir, "index.html"), "", "")

	wrote, err := w.WriteOnce("/a-1.js", "/h-1.js")
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = w.WriteOnce("/a-2.js", "/h-2.js")
	require.NoError(t, err)
	assert.False(t, wrote)

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "/a-1.js")
	assert.True(t, w.Written())
}

func TestBootstrapCustomTemplate(t *testing.T) {
	dir := t.TempDir()
	tpl := filepath.Join(dir, "template.html")
	require.NoError(t, os.WriteFile(tpl, []byte(`<html><head><title>Keep</title></head><body><main id="root"></main></body></html>`), 0o644))

	w := NewBootstrapWriter(filepath.Join(dir, "index.html"), tpl, "Ignored")
	require.NoError(t, w.Write("/app.js", "/hmr.js"))

	data, err := os.ReadFile(w.Path())
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "<title>Keep</title>")
	assert.Contains(t, doc, `<main id="root"></main><script type="module" src="/hmr.js"></script>`)
}

func TestBootstrapMissingTemplateWritesNothing(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "index.html")
	w := NewBootstrapWriter(out, filepath.Join(dir, "nope.html"), "")

	wrote, err := w.WriteOnce("/app.js", "/hmr.js")
	require.Error(t, err)
	assert.False(t, wrote)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.NoFileExists(t, out)
	assert.False(t, w.Written())
}

func TestRenderLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	w := NewBootstrapWriter(filepath.Join(dir, "index.html"), "", "")
	require.NoError(t, w.Write("/a.js", "/h.js"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "index.html", entries[0].Name())
}
