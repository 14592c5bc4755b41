package devserver

import (
	"context"
	"fmt"
	"time"

	"git.home.luguber.info/inful/hotbundle/internal/build"
	"git.home.luguber.info/inful/hotbundle/internal/eventstore"
	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/manifest"
	"git.home.luguber.info/inful/hotbundle/internal/metrics"
	"git.home.luguber.info/inful/hotbundle/internal/notify"
)

// generation is the scheduler's build function: rebuild, then on a clean
// result write the bootstrap document once and broadcast the update set.
func (s *Server) generation(ctx context.Context, gen build.Generation) error {
	g := uint64(gen)
	ev, evErr := eventstore.NewGenerationStarted(g)
	s.record(ctx, ev, evErr)

	start := time.Now()
	res := s.engine.Rebuild(ctx)
	elapsed := time.Since(start)

	s.logWarnings(gen, res.Warnings)
	if !res.OK() {
		s.logErrors(gen, res.Errors, elapsed)
		err := build.Failure(gen, res)
		s.fail(ctx, gen, elapsed, len(res.Warnings), messages(res.Errors), err)
		return err
	}

	app, hmrEntry, err := manifest.Locate(res.Metadata)
	if err != nil {
		s.fail(ctx, gen, elapsed, len(res.Warnings), []string{err.Error()}, err)
		return err
	}
	if wrote, err := s.bootstrap.WriteOnce(s.resolver.URL(app.OutputPath), s.resolver.URL(hmrEntry.OutputPath)); err != nil {
		s.fail(ctx, gen, elapsed, len(res.Warnings), []string{err.Error()}, err)
		return err
	} else if wrote {
		s.logger.Info("Bootstrap document written", logfields.Path(s.bootstrap.Path()))
	}

	urls := s.resolver.Resolve(res.Metadata)
	s.mu.Lock()
	changes := manifest.Diff(s.prevURLs, urls)
	recovered := !s.lastOK
	s.prevURLs = urls
	s.lastOK = true
	s.lastErr = nil
	s.lastBuild = time.Now()
	s.mu.Unlock()

	msg := s.message(changes, recovered)
	clients := s.hub.Len()
	delivered := s.hub.Broadcast(msg)

	outcome := metrics.OutcomeSuccess
	if len(res.Warnings) > 0 {
		outcome = metrics.OutcomeWarning
	}
	s.recorder.IncBuildOutcome(outcome)
	s.logger.Info("Build complete",
		logfields.Generation(g),
		logfields.DurationMS(ms(elapsed)),
		logfields.Warnings(len(res.Warnings)),
		logfields.State(msg.Type),
		logfields.Clients(clients))

	ev, evErr = eventstore.NewGenerationSucceeded(g, eventstore.GenerationSucceededData{
		DurationMS:  elapsed.Milliseconds(),
		Warnings:    len(res.Warnings),
		Outputs:     len(res.Metadata),
		Fingerprint: res.Metadata.Fingerprint(),
	})
	s.record(ctx, ev, evErr)
	keys := make([]string, 0, len(changes))
	for _, c := range changes {
		keys = append(keys, c.Key)
	}
	ev, evErr = eventstore.NewUpdatesBroadcast(g, eventstore.UpdatesBroadcastData{
		MessageType: msg.Type,
		Keys:        keys,
		Clients:     clients,
		Delivered:   delivered,
	})
	s.record(ctx, ev, evErr)
	return nil
}

// message picks a full reload after recovering from a failed generation
// when configured, and an hmr update set otherwise.
func (s *Server) message(changes []manifest.Change, recovered bool) notify.Message {
	if recovered && s.cfg.Server.ReloadOnRecovery {
		return notify.ReloadMessage()
	}
	updates := make([]notify.Update, 0, len(changes))
	for _, c := range changes {
		updates = append(updates, notify.NewUpdate(c.Key, c.URL))
	}
	return notify.NewHMRMessage(updates)
}

func (s *Server) fail(ctx context.Context, gen build.Generation, elapsed time.Duration, warnings int, errs []string, err error) {
	s.mu.Lock()
	s.lastOK = false
	s.lastErr = err
	s.lastBuild = time.Now()
	s.mu.Unlock()
	s.recorder.IncBuildOutcome(metrics.OutcomeFailed)
	ev, evErr := eventstore.NewGenerationFailed(uint64(gen), eventstore.GenerationFailedData{
		DurationMS: elapsed.Milliseconds(),
		Warnings:   warnings,
		Errors:     errs,
	})
	s.record(ctx, ev, evErr)
}

func (s *Server) logWarnings(gen build.Generation, warnings []build.Message) {
	if len(warnings) == 0 {
		return
	}
	for _, w := range warnings {
		s.logger.Warn(w.String(), logfields.Generation(uint64(gen)))
	}
	s.logger.Warn(fmt.Sprintf("Build finished with %d warning(s)", len(warnings)),
		logfields.Generation(uint64(gen)), logfields.Warnings(len(warnings)))
}

// logErrors emits one error record per engine error plus a warn-level summary.
func (s *Server) logErrors(gen build.Generation, errs []build.Message, elapsed time.Duration) {
	for _, e := range errs {
		s.logger.Error(e.String(), logfields.Generation(uint64(gen)))
	}
	s.logger.Warn(fmt.Sprintf("Build finished with %d error(s) in %s", len(errs), elapsed.Round(time.Millisecond)),
		logfields.Generation(uint64(gen)),
		logfields.Errors(len(errs)),
		logfields.DurationMS(ms(elapsed)))
}

func (s *Server) record(ctx context.Context, ev *eventstore.BaseEvent, err error) {
	if s.history == nil {
		return
	}
	s.history.Record(ctx, ev, err)
}

func messages(msgs []build.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.String())
	}
	return out
}

func ms(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// lastError renders the most recent failure for status reporting.
func (s *Server) lastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastErr == nil {
		return ""
	}
	if ce, ok := ferrors.AsClassified(s.lastErr); ok {
		return ce.Message()
	}
	return s.lastErr.Error()
}
