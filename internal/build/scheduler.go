package build

import (
	"context"
	"log/slog"
	"sync"
	"time"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/metrics"
	"git.home.luguber.info/inful/hotbundle/internal/watch"
)

// Generation identifies one rebuild attempt. It increases by one per build.
type Generation uint64

// State is the scheduler's position in its build lifecycle.
type State int

const (
	StateIdle State = iota
	StateBuilding
	StateBuildingWithPending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuilding:
		return "building"
	case StateBuildingWithPending:
		return "building_with_pending"
	default:
		return "unknown"
	}
}

// Func performs one rebuild. Returning a config-category error stops the scheduler.
type Func func(ctx context.Context, gen Generation) error

// Scheduler serializes rebuilds and coalesces triggers that arrive mid-build.
type Scheduler struct {
	build    Func
	recorder metrics.Recorder
	logger   *slog.Logger

	mu         sync.Mutex
	state      State
	generation Generation
	coalesced  int
	kick       chan struct{}
}

// NewScheduler creates an idle scheduler around build.
func NewScheduler(build Func) *Scheduler {
	return &Scheduler{
		build:    build,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		kick:     make(chan struct{}, 1),
	}
}

// WithRecorder sets the metrics recorder.
func (s *Scheduler) WithRecorder(r metrics.Recorder) *Scheduler {
	if r != nil {
		s.recorder = r
	}
	return s
}

// WithLogger sets the logger.
func (s *Scheduler) WithLogger(l *slog.Logger) *Scheduler {
	if l != nil {
		s.logger = l
	}
	return s
}

// Trigger requests a rebuild for ev. It never blocks on a running build.
func (s *Scheduler) Trigger(ev watch.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		s.logger.Info("Change detected; rebuilding", logfields.Op(string(ev.Kind)), logfields.Path(ev.Path))
		s.startLocked()
	case StateBuilding:
		s.state = StateBuildingWithPending
		s.logger.Debug("Build running; follow-up scheduled", logfields.Path(ev.Path))
	case StateBuildingWithPending:
		s.coalesced++
		s.recorder.IncCoalescedEvents()
		s.logger.Debug("Change coalesced into pending build", logfields.Path(ev.Path))
	}
}

// startLocked moves Idle -> Building and wakes Run. The kick channel holds at
// most one token because only this transition sends one.
func (s *Scheduler) startLocked() {
	s.state = StateBuilding
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run performs the initial build, then serves triggers until ctx is done or
// a build reports a configuration error. A running build is never cancelled:
// it sees a context detached from ctx's cancellation.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateIdle {
		s.startLocked()
	}
	s.mu.Unlock()

	buildCtx := context.WithoutCancel(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.kick:
		}
		for {
			if err := s.runOne(buildCtx); err != nil {
				s.mu.Lock()
				s.state = StateIdle
				s.mu.Unlock()
				return err
			}
			if !s.finish() {
				break
			}
		}
	}
}

// finish retires the current build. It reports whether a follow-up starts.
func (s *Scheduler) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateBuildingWithPending {
		s.state = StateBuilding
		return true
	}
	s.state = StateIdle
	return false
}

func (s *Scheduler) runOne(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	start := time.Now()
	err := s.build(ctx, gen)
	elapsed := time.Since(start)
	s.recorder.ObserveBuildDuration(elapsed)

	if err == nil {
		return nil
	}
	if ferrors.HasCategory(err, ferrors.CategoryConfig) {
		s.logger.Error("Rebuild halted by configuration error",
			logfields.Generation(uint64(gen)), logfields.Error(err))
		return err
	}
	s.logger.Warn("Rebuild did not complete",
		logfields.Generation(uint64(gen)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
		logfields.Error(err))
	return nil
}

// State returns the current lifecycle state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Generation returns the most recently started generation (0 before the first build).
func (s *Scheduler) Generation() Generation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Coalesced returns how many triggers were folded into an already pending build.
func (s *Scheduler) Coalesced() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coalesced
}
