package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"git.home.luguber.info/inful/hotbundle/internal/eventstore"
	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/notify"
	"git.home.luguber.info/inful/hotbundle/internal/version"
)

// Status is the JSON document served at <hmr_path>/status.
type Status struct {
	Version    string                         `json:"version"`
	Mode       string                         `json:"mode"`
	Generation uint64                         `json:"generation"`
	State      string                         `json:"state"`
	Clients    int                            `json:"clients"`
	ClientIDs  []string                       `json:"client_ids,omitempty"`
	Coalesced  int                            `json:"coalesced"`
	Bootstrap  bool                           `json:"bootstrap_written"`
	LastError  string                         `json:"last_error,omitempty"`
	LastBuild  *time.Time                     `json:"last_build,omitempty"`
	Uptime     string                         `json:"uptime"`
	History    []eventstore.GenerationSummary `json:"history,omitempty"`
}

// Handler returns the dev server's HTTP surface.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	hmrPath := s.cfg.Server.HMRPath
	mux.Handle(hmrPath, notify.NewHandler(s.hub, s.logger))
	mux.HandleFunc(path.Join(hmrPath, "status"), s.handleStatus)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.prom != nil {
		mux.Handle(s.cfg.Metrics.Path, s.prom.Handler())
	}
	files := http.FileServer(http.Dir(s.cfg.PublicRoot()))
	mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" || strings.HasSuffix(r.URL.Path, ".html") {
			w.Header().Set("Cache-Control", "no-cache")
		}
		files.ServeHTTP(w, r)
	}))
	return mux
}

// Start binds the listen address and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return ferrors.RuntimeError("cannot bind dev server address").
			WithCause(err).WithContext("addr", s.cfg.Addr()).Build()
	}
	return s.serve(ln)
}

func (s *Server) serve(ln net.Listener) error {
	s.httpServer = &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 10 * time.Second, IdleTimeout: 120 * time.Second}
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Dev server error", logfields.Error(err))
		}
	}()
	s.logger.Info("Dev server listening", logfields.URL("http://"+ln.Addr().String()))
	return nil
}

// Stop gracefully shuts the HTTP server down.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	s.logger.Info("Dev server stopped")
	return nil
}

// Status snapshots the session.
func (s *Server) Status() Status {
	st := Status{
		Version:    version.String(),
		Mode:       string(s.cfg.Mode),
		Generation: uint64(s.scheduler.Generation()),
		State:      s.scheduler.State().String(),
		Clients:    s.hub.Len(),
		ClientIDs:  s.hub.Clients(),
		Coalesced:  s.scheduler.Coalesced(),
		Bootstrap:  s.bootstrap.Written(),
		LastError:  s.lastError(),
		Uptime:     time.Since(s.started).Round(time.Second).String(),
	}
	s.mu.RLock()
	if !s.lastBuild.IsZero() {
		t := s.lastBuild
		st.LastBuild = &t
	}
	s.mu.RUnlock()
	if s.history != nil {
		st.History = s.history.Projection().Recent(10)
	}
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
