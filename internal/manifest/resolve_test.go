package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

func TestResolverURL(t *testing.T) {
	r := NewResolver("public")
	assert.Equal(t, "/build/app-ABC.js", r.URL("public/build/app-ABC.js"))
	assert.Equal(t, "/other/x.js", r.URL("other/x.js"))

	r = NewResolver("./public/")
	assert.Equal(t, "/build/hmr-1.js", r.URL("public/build/hmr-1.js"))

	r = NewResolver(".")
	assert.Equal(t, "/public/a.js", r.URL("public/a.js"))
}

func TestLocateMissingEntry(t *testing.T) {
	_, _, err := Locate(Metadata{AppEntry: {OutputPath: "public/build/app-1.js"}})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	ce, _ := ferrors.AsClassified(err)
	missing, _ := ce.Context().GetString("missing")
	assert.Equal(t, HMREntry, missing)

	_, _, err = Locate(Metadata{})
	require.Error(t, err)
	ce, _ = ferrors.AsClassified(err)
	missing, _ = ce.Context().GetString("missing")
	assert.Equal(t, "app,hmr", missing)
}

func TestLocateFindsEntries(t *testing.T) {
	m := Metadata{
		AppEntry: {OutputPath: "public/build/app-1.js", Size: 10},
		HMREntry: {OutputPath: "public/build/hmr-2.js", Size: 20},
	}
	app, hmr, err := Locate(m)
	require.NoError(t, err)
	assert.Equal(t, "public/build/app-1.js", app.OutputPath)
	assert.Equal(t, int64(20), hmr.Size)
}

func TestDiffFirstGenerationIncludesEverything(t *testing.T) {
	next := map[string]string{"b": "/b-1.js", "a": "/a-1.js"}
	assert.Equal(t, []Change{{Key: "a", URL: "/a-1.js"}, {Key: "b", URL: "/b-1.js"}}, Diff(nil, next))
}

func TestDiffReportsChangedAndNewKeysOnly(t *testing.T) {
	prev := map[string]string{
		"app":            "/build/app-1.js",
		"app/Button.tsx": "/build/app-1.js",
		"app/util.ts":    "/build/chunk-A.js",
	}
	next := map[string]string{
		"app":            "/build/app-2.js",
		"app/Button.tsx": "/build/app-2.js",
		"app/util.ts":    "/build/chunk-A.js",
		"app/new.ts":     "/build/app-2.js",
	}
	assert.Equal(t, []Change{
		{Key: "app", URL: "/build/app-2.js"},
		{Key: "app/Button.tsx", URL: "/build/app-2.js"},
		{Key: "app/new.ts", URL: "/build/app-2.js"},
	}, Diff(prev, next))
}

func TestDiffUnchangedIsEmpty(t *testing.T) {
	m := map[string]string{"app": "/a.js"}
	assert.Empty(t, Diff(m, m))
}

func TestMetadataFingerprint(t *testing.T) {
	a := Metadata{"app": {OutputPath: "public/build/app-1.js", Size: 1}, "hmr": {OutputPath: "public/build/hmr-1.js"}}
	b := Metadata{"hmr": {OutputPath: "public/build/hmr-1.js"}, "app": {OutputPath: "public/build/app-1.js", Size: 99}}
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())

	c := Metadata{"app": {OutputPath: "public/build/app-2.js"}, "hmr": {OutputPath: "public/build/hmr-1.js"}}
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())

	assert.Equal(t, []string{"app", "hmr"}, b.Keys())
}
