package watch

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollerEmitsOnFingerprintChange(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("1"), 0o644))

	p, err := newPoller(dir, time.Hour, func(path string, _ bool) bool { return !shouldIgnoreEvent(path) }, slog.Default())
	require.NoError(t, err)

	var got []Event
	p.emit = func(ev Event) { got = append(got, ev) }
	p.last = p.fingerprint()

	p.poll()
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(file, []byte("22"), 0o644))
	p.poll()
	require.Len(t, got, 1)
	assert.Equal(t, KindChange, got[0].Kind)
	assert.Equal(t, dir, got[0].Path)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".x.swp"), []byte("swap"), 0o644))
	p.poll()
	assert.Len(t, got, 1)
}
