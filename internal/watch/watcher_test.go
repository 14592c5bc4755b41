package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, opts Options) <-chan Event {
	t.Helper()
	w, err := New(opts)
	require.NoError(t, err)

	events := make(chan Event, 64)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(ev Event) {
			select {
			case events <- ev:
			default:
			}
		})
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-w.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return events
}

func waitFor(t *testing.T, events <-chan Event, match func(Event) bool) Event {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case ev := <-events:
			if match(ev) {
				return ev
			}
		case <-deadline:
			t.Fatal("expected event not received")
			return Event{}
		}
	}
}

func TestWatcherEmitsFileChanges(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a.tsx")
	require.NoError(t, os.WriteFile(target, []byte("export {}"), 0o644))

	events := startWatcher(t, Options{Dir: dir})
	require.NoError(t, os.WriteFile(target, []byte("export const x = 1"), 0o644))

	ev := waitFor(t, events, func(e Event) bool { return e.Path == target })
	assert.Contains(t, []Kind{KindChange, KindAdd}, ev.Kind)
	assert.False(t, ev.Time.IsZero())
}

func TestWatcherFollowsNewDirectories(t *testing.T) {
	dir := t.TempDir()
	events := startWatcher(t, Options{Dir: dir})

	sub := filepath.Join(dir, "routes")
	require.NoError(t, os.Mkdir(sub, 0o755))
	// Give the watcher a moment to register the new directory.
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "index.tsx")
	require.NoError(t, os.WriteFile(file, []byte("export {}"), 0o644))
	waitFor(t, events, func(e Event) bool { return e.Path == file })
}

func TestWatcherEmitsAddForMovedInDirectory(t *testing.T) {
	staging := t.TempDir()
	src := filepath.Join(staging, "routes")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "index.tsx"), []byte("export {}"), 0o644))

	dir := t.TempDir()
	events := startWatcher(t, Options{Dir: dir})

	moved := filepath.Join(dir, "routes")
	require.NoError(t, os.Rename(src, moved))

	ev := waitFor(t, events, func(e Event) bool { return e.Path == moved })
	assert.Equal(t, KindAdd, ev.Kind)
}

func TestWatcherIgnoresHiddenAndGitignored(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.log\n"), 0o644))

	events := startWatcher(t, Options{Dir: dir, IgnoreRoot: dir})

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".a.tsx.swp"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debug.log"), []byte("x"), 0o644))
	marker := filepath.Join(dir, "b.ts")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0o644))

	ev := waitFor(t, events, func(Event) bool { return true })
	assert.Equal(t, marker, ev.Path)
}

func TestShouldIgnoreEvent(t *testing.T) {
	assert.True(t, shouldIgnoreEvent("/p/.hidden.ts"))
	assert.True(t, shouldIgnoreEvent("/p/a.ts~"))
	assert.True(t, shouldIgnoreEvent("/p/a.ts.swp"))
	assert.True(t, shouldIgnoreEvent("/p/#a.ts#"))
	assert.False(t, shouldIgnoreEvent("/p/a.ts"))
}

func TestIgnoreSetMatchesNestedPaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("dist/\n"), 0o644))
	set, err := loadIgnoreSet(dir)
	require.NoError(t, err)

	assert.True(t, set.Ignored(filepath.Join(dir, "dist"), true))
	assert.False(t, set.Ignored(filepath.Join(dir, "app", "a.ts"), false))
	assert.False(t, set.Ignored("/elsewhere/dist", true))

	var nilSet *ignoreSet
	assert.False(t, nilSet.Ignored(filepath.Join(dir, "dist"), true))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindAdd, kindOf(fsnotify.Create))
	assert.Equal(t, KindChange, kindOf(fsnotify.Write))
	assert.Equal(t, KindRemove, kindOf(fsnotify.Remove))
	assert.Equal(t, KindRemove, kindOf(fsnotify.Rename))
	assert.Equal(t, Kind(""), kindOf(fsnotify.Chmod))
}
