package hmr

import (
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleID_StableAndContentIndependent(t *testing.T) {
	root := t.TempDir()
	p := filepath.Join(root, "app", "components", "Counter.tsx")

	id := ModuleID(root, p)
	assert.Equal(t, "app/components/Counter.tsx", id)
	for range 5 {
		assert.Equal(t, id, ModuleID(root, p))
	}
	assert.Equal(t, id, ModuleID(root, filepath.Join(root, "app", ".", "components", "Counter.tsx")))
}

func TestModuleID_OutsideRootKeepsAbsolutePath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "project")
	p := filepath.Join(filepath.Dir(root), "shared", "x.ts")
	assert.Equal(t, filepath.ToSlash(p), ModuleID(root, p))
}

func TestModuleTable_LookupCreatesOnce(t *testing.T) {
	root := t.TempDir()
	table := NewModuleTable(root)
	p := filepath.Join(root, "app", "App.tsx")

	_, ok := table.Get(p)
	assert.False(t, ok)

	first := table.Lookup(p, true)
	second := table.Lookup(p, true)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, table.Len())

	updated := table.Lookup(p, false)
	assert.Equal(t, first.ModuleID, updated.ModuleID)
	assert.False(t, updated.Eligible)

	got, ok := table.Get(p)
	require.True(t, ok)
	assert.False(t, got.Eligible)
}

func TestModuleTable_ConcurrentLookups(t *testing.T) {
	root := t.TempDir()
	table := NewModuleTable(root)
	paths := []string{
		filepath.Join(root, "app", "a.ts"),
		filepath.Join(root, "app", "b.ts"),
		filepath.Join(root, "app", "c.tsx"),
	}

	var wg sync.WaitGroup
	for i := range 30 {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			table.Lookup(p, true)
		}(paths[i%len(paths)])
	}
	wg.Wait()
	assert.Equal(t, len(paths), table.Len())
}
