package watch

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/go-co-op/gocron/v2"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
)

// poller fingerprints the tree on a fixed interval and emits a change event
// whenever the fingerprint moves.
type poller struct {
	root     string
	interval time.Duration
	accept   func(path string, isDir bool) bool
	logger   *slog.Logger

	scheduler gocron.Scheduler
	mu        sync.Mutex
	last      uint64
	emit      func(Event)
}

func newPoller(root string, interval time.Duration, accept func(string, bool) bool, logger *slog.Logger) (*poller, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, ferrors.WatchError("failed to create poll scheduler").WithCause(err).Fatal().Build()
	}
	return &poller{root: root, interval: interval, accept: accept, logger: logger, scheduler: s}, nil
}

// Start takes the baseline fingerprint and schedules the poll job.
func (p *poller) Start(emit func(Event)) error {
	p.mu.Lock()
	p.emit = emit
	p.last = p.fingerprint()
	p.mu.Unlock()

	_, err := p.scheduler.NewJob(
		gocron.DurationJob(p.interval),
		gocron.NewTask(p.poll),
		gocron.WithName("watch-poll"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return ferrors.WatchError("failed to schedule poll job").WithCause(err).Fatal().Build()
	}
	p.scheduler.Start()
	return nil
}

func (p *poller) Stop() {
	if err := p.scheduler.Shutdown(); err != nil {
		p.logger.Warn("poll scheduler shutdown", logfields.Error(err))
	}
}

func (p *poller) poll() {
	sum := p.fingerprint()
	p.mu.Lock()
	changed := sum != p.last
	p.last = sum
	emit := p.emit
	p.mu.Unlock()
	if changed && emit != nil {
		p.logger.Debug("Poll detected change", logfields.Path(p.root))
		emit(Event{Kind: KindChange, Path: p.root, Time: time.Now()})
	}
}

// fingerprint hashes path, size and mtime of every accepted file. WalkDir
// visits entries in lexical order so the digest is stable.
func (p *poller) fingerprint() uint64 {
	d := xxhash.New()
	_ = filepath.WalkDir(p.root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path != p.root && !p.accept(path, e.IsDir()) {
			if e.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if e.IsDir() {
			return nil
		}
		info, err := e.Info()
		if err != nil {
			return nil
		}
		_, _ = fmt.Fprintf(d, "%s\x00%d\x00", path, info.Size())
		_, _ = d.WriteString(strconv.FormatInt(info.ModTime().UnixNano(), 10))
		return nil
	})
	return d.Sum64()
}
