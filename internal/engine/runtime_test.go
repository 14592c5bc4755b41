package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuntimeSourceEmbedsPath(t *testing.T) {
	src := RuntimeSource("/__hmr__")
	assert.Contains(t, src, `const HMR_PATH = "/__hmr__";`)
	assert.Contains(t, src, "export function createHotContext(id)")
	assert.NotContains(t, src, "__HMR_PATH__")
}

func TestEntrySource(t *testing.T) {
	plain := EntrySource(false)
	assert.Contains(t, plain, `import * as __hmr__ from "hmr:runtime";`)
	assert.NotContains(t, plain, "react-refresh/runtime")
	assert.NotContains(t, plain, entryContextKey)

	withRefresh := EntrySource(true)
	assert.Contains(t, withRefresh, `from "react-refresh/runtime"`)
	assert.Contains(t, withRefresh, "window.$RefreshRuntime$ = RefreshRuntime;")
}
