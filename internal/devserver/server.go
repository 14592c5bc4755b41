package devserver

import (
	"context"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/hotbundle/internal/build"
	"git.home.luguber.info/inful/hotbundle/internal/config"
	"git.home.luguber.info/inful/hotbundle/internal/engine"
	"git.home.luguber.info/inful/hotbundle/internal/eventstore"
	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/hmr"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/manifest"
	"git.home.luguber.info/inful/hotbundle/internal/metrics"
	"git.home.luguber.info/inful/hotbundle/internal/notify"
	"git.home.luguber.info/inful/hotbundle/internal/refresh"
	"git.home.luguber.info/inful/hotbundle/internal/retry"
	"git.home.luguber.info/inful/hotbundle/internal/watch"
)

// Options carries injectable collaborators. Zero values select the
// production implementations derived from the configuration.
type Options struct {
	Logger   *slog.Logger
	Engine   build.Engine
	Registry *prom.Registry
}

// Server owns one dev session.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder

	engine    build.Engine
	hook      *hmr.Hook
	scheduler *build.Scheduler
	hub       *notify.Hub
	sink      *notify.NATSSink
	history   *eventstore.History
	bootstrap *manifest.BootstrapWriter
	resolver  manifest.Resolver

	httpServer *http.Server
	closeOnce  sync.Once

	mu        sync.RWMutex
	prevURLs  map[string]string
	lastOK    bool
	lastErr   error
	lastBuild time.Time
	started   time.Time
}

// New wires every component from cfg.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:       cfg,
		logger:    logger,
		recorder:  metrics.NoopRecorder{},
		lastOK:    true,
		started:   time.Now(),
		bootstrap: manifest.NewBootstrapWriter(cfg.BootstrapPath(), cfg.TemplatePath(), cfg.Bootstrap.Title),
	}
	if cfg.Metrics.Enabled {
		s.prom = metrics.NewPrometheusRecorder(opts.Registry)
		s.recorder = s.prom
	}

	publicRel, err := filepath.Rel(cfg.Root, cfg.PublicRoot())
	if err != nil {
		return nil, ferrors.ConfigError("public_dir must be relative to root").WithCause(err).Build()
	}
	s.resolver = manifest.NewResolver(filepath.ToSlash(publicRel))

	s.hub = notify.NewHub().WithRecorder(s.recorder).WithLogger(logger)
	if cfg.NATS.URL != "" {
		sink, err := notify.NewNATSSink(ctx, cfg.NATS.URL, cfg.NATS.Subject,
			retry.NewPolicy(retry.BackoffLinear, 0, 0, cfg.NATS.ConnectRetries), logger)
		if err != nil {
			logger.Warn("NATS sink disabled", logfields.Error(err))
		} else {
			s.sink = sink
			s.hub.AddSink(sink)
		}
	}

	s.history = openHistory(ctx, cfg, logger)

	if opts.Engine != nil {
		s.engine = opts.Engine
	} else {
		eng, hook, err := newEngine(cfg, s.recorder, logger)
		if err != nil {
			s.closeSideChannels()
			return nil, err
		}
		s.engine, s.hook = eng, hook
	}

	s.scheduler = build.NewScheduler(s.generation).WithRecorder(s.recorder).WithLogger(logger)
	return s, nil
}

func openHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger) *eventstore.History {
	path := cfg.History.Path
	if path != ":memory:" && !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Root, filepath.FromSlash(path))
	}
	store, err := eventstore.NewSQLiteStore(path)
	if err != nil {
		logger.Warn("Generation history disabled", logfields.Path(path), logfields.Error(err))
		return nil
	}
	return eventstore.NewHistory(ctx, store, logger)
}

func newEngine(cfg *config.Config, rec metrics.Recorder, logger *slog.Logger) (build.Engine, *hmr.Hook, error) {
	filter, err := hmr.NewFilter(cfg.SourceRoot(), cfg.Eligibility.Extensions, cfg.Eligibility.Exclude)
	if err != nil {
		return nil, nil, err
	}
	var refresher hmr.Refresher = refresh.Passthrough{}
	if len(cfg.Refresh.Command) > 0 {
		cmd, err := refresh.NewCommand(cfg.Refresh.Command, cfg.Refresh.Timeout)
		if err != nil {
			return nil, nil, err
		}
		refresher = cmd
	}
	production := cfg.Mode.Production()
	injector := hmr.NewInjector(engine.NewCompiler(production), refresher).WithLogger(logger)
	hook := hmr.NewHook(filter, hmr.NewModuleTable(cfg.Root), injector).WithRecorder(rec)

	eng, err := engine.New(engine.Options{
		Root:       cfg.Root,
		OutDir:     cfg.OutRoot(),
		AppEntry:   cfg.AppEntryPath(),
		Vendor:     cfg.Entries.Vendor,
		Production: production,
		HMRPath:    cfg.Server.HMRPath,
		Refresh:    len(cfg.Refresh.Command) > 0,
		Hook:       hook,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return eng, hook, nil
}

// Hub exposes the broadcaster.
func (s *Server) Hub() *notify.Hub { return s.hub }

// Scheduler exposes the rebuild scheduler.
func (s *Server) Scheduler() *build.Scheduler { return s.scheduler }

// Run serves HTTP, watches the source tree and rebuilds until ctx is done.
// It returns early with the error when a build hits a configuration error.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	if err := s.Start(); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Stop(shutdownCtx); err != nil {
			s.logger.Warn("HTTP server shutdown error", logfields.Error(err))
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w, err := watch.New(watch.Options{
		Dir:          s.cfg.SourceRoot(),
		IgnoreRoot:   s.ignoreRoot(),
		PollInterval: s.cfg.Watch.PollInterval,
		Logger:       s.logger,
	})
	if err != nil {
		return err
	}
	debouncer := build.NewDebouncer(s.cfg.Watch.Debounce, s.scheduler.Trigger)
	defer debouncer.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := w.Run(runCtx, debouncer.Trigger); err != nil {
			s.logger.Warn("Watcher stopped", logfields.Error(err))
		}
	}()

	err = s.scheduler.Run(runCtx)
	cancel()
	wg.Wait()
	return err
}

func (s *Server) ignoreRoot() string {
	if !s.cfg.Watch.Gitignore {
		return ""
	}
	return s.cfg.Root
}

// BuildOnce runs a single generation without serving or watching.
func (s *Server) BuildOnce(ctx context.Context) error {
	return s.generation(ctx, 1)
}

// Close releases the engine, the history store and the NATS connection.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		if s.engine != nil {
			s.engine.Dispose()
		}
		s.closeSideChannels()
	})
}

func (s *Server) closeSideChannels() {
	if s.sink != nil {
		s.sink.Close()
		s.sink = nil
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.logger.Warn("History close failed", logfields.Error(err))
		}
		s.history = nil
	}
}
