package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
)

// Options configures a Watcher.
type Options struct {
	// Dir is the directory tree to watch.
	Dir string
	// IgnoreRoot is where .gitignore files are read from. Empty disables gitignore handling.
	IgnoreRoot string
	// PollInterval enables the polling fallback when > 0.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Watcher emits Events for changes under Options.Dir.
type Watcher struct {
	opts    Options
	logger  *slog.Logger
	fsw     *fsnotify.Watcher
	ignore  *ignoreSet
	poller  *poller
	ready   chan struct{}
	readyMu sync.Once
}

// New creates a watcher. Failing to create the fsnotify watcher is fatal
// unless polling is configured.
func New(opts Options) (*Watcher, error) {
	abs, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, ferrors.WatchError("invalid watch directory").WithCause(err).Fatal().Build()
	}
	opts.Dir = abs
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	w := &Watcher{opts: opts, logger: logger, ready: make(chan struct{})}

	if opts.IgnoreRoot != "" {
		set, err := loadIgnoreSet(opts.IgnoreRoot)
		if err != nil {
			logger.Warn("Failed to read .gitignore patterns", logfields.Path(opts.IgnoreRoot), logfields.Error(err))
		} else {
			w.ignore = set
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		if opts.PollInterval <= 0 {
			return nil, ferrors.WatchError("failed to create file watcher").WithCause(err).Fatal().Build()
		}
		logger.Warn("fsnotify unavailable; falling back to polling", logfields.Error(err))
	}
	w.fsw = fsw

	if opts.PollInterval > 0 {
		p, err := newPoller(abs, opts.PollInterval, w.accept, logger)
		if err != nil {
			if fsw != nil {
				_ = fsw.Close()
			}
			return nil, err
		}
		w.poller = p
	}
	return w, nil
}

// Ready is closed once the initial scan completes. Nothing is emitted before that.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is cancelled, passing each relevant change to emit.
func (w *Watcher) Run(ctx context.Context, emit func(Event)) error {
	if w.fsw != nil {
		defer func() { _ = w.fsw.Close() }()
		w.addDirsRecursive(w.opts.Dir)
		w.drainPending()
	}
	if w.poller != nil {
		if err := w.poller.Start(emit); err != nil {
			return err
		}
		defer w.poller.Stop()
	}
	w.readyMu.Do(func() { close(w.ready) })
	w.logger.Info("Watching for changes", logfields.Path(w.opts.Dir))

	if w.fsw == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleFileEvent(ev, emit)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", logfields.Error(ferrors.WatchError("fsnotify error").WithCause(err).Build()))
		}
	}
}

// drainPending discards events queued during the initial scan.
func (w *Watcher) drainPending() {
	for {
		select {
		case <-w.fsw.Events:
		case <-w.fsw.Errors:
		default:
			return
		}
	}
}

func (w *Watcher) handleFileEvent(ev fsnotify.Event, emit func(Event)) {
	if !w.accept(ev.Name, false) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			if w.ignore.Ignored(ev.Name, true) {
				return
			}
			w.addDirsRecursive(ev.Name)
			w.logger.Debug("Directory added", logfields.Path(ev.Name))
			emit(Event{Kind: KindAdd, Path: ev.Name, Time: time.Now()})
			return
		}
	}
	kind := kindOf(ev.Op)
	if kind == "" {
		return
	}
	w.logger.Debug("File change detected", logfields.Path(ev.Name), logfields.Op(ev.Op.String()))
	emit(Event{Kind: kind, Path: ev.Name, Time: time.Now()})
}

// accept reports whether a path may produce events.
func (w *Watcher) accept(path string, isDir bool) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	return !w.ignore.Ignored(path, isDir)
}

func (w *Watcher) addDirsRecursive(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && !w.accept(path, true) {
			return filepath.SkipDir
		}
		if err := w.fsw.Add(path); err != nil {
			w.logger.Warn("watch add failed", logfields.Path(path),
				logfields.Error(ferrors.WatchError(fmt.Sprintf("cannot watch %s", path)).WithCause(err).Build()))
		}
		return nil
	})
}
