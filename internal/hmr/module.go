package hmr

import (
	"path/filepath"
	"strings"
	"sync"
)

// ModuleRecord identifies one source module for the lifetime of the process.
type ModuleRecord struct {
	SourcePath string // slash-separated, relative to the project root
	ModuleID   string
	Eligible   bool
}

// ModuleID derives the id of path relative to projectRoot. It depends only on
// the two paths, never on file content, so repeated transforms agree.
// Paths outside the project root keep their cleaned absolute form.
func ModuleID(projectRoot, path string) string {
	clean := filepath.Clean(path)
	rel, err := filepath.Rel(projectRoot, clean)
	if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(rel)
	}
	return filepath.ToSlash(clean)
}

// ModuleTable is the append-only path -> ModuleRecord table. The build engine
// may transform modules concurrently, so access is serialized.
type ModuleTable struct {
	root    string
	mu      sync.Mutex
	records map[string]*ModuleRecord
}

// NewModuleTable creates an empty table keyed relative to projectRoot.
func NewModuleTable(projectRoot string) *ModuleTable {
	return &ModuleTable{root: filepath.Clean(projectRoot), records: make(map[string]*ModuleRecord)}
}

// Lookup returns the record for path, creating it on first use. An existing
// record only ever has its Eligible flag updated.
func (t *ModuleTable) Lookup(path string, eligible bool) ModuleRecord {
	id := ModuleID(t.root, path)

	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok {
		rec = &ModuleRecord{SourcePath: id, ModuleID: id, Eligible: eligible}
		t.records[id] = rec
	}
	rec.Eligible = eligible
	return *rec
}

// Get returns the record for path without creating one.
func (t *ModuleTable) Get(path string) (ModuleRecord, bool) {
	id := ModuleID(t.root, path)
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok {
		return ModuleRecord{}, false
	}
	return *rec, true
}

// Len returns the number of known modules.
func (t *ModuleTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}
