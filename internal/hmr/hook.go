package hmr

import (
	"log/slog"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/metrics"
)

// Loader names how the build engine should parse transformed content.
type Loader string

const (
	LoaderTS  Loader = "ts"
	LoaderTSX Loader = "tsx"
)

// LoaderFor infers the loader from the file extension: names ending in "x"
// (.tsx, .jsx) may contain JSX.
func LoaderFor(path string) Loader {
	if strings.HasSuffix(path, "x") {
		return LoaderTSX
	}
	return LoaderTS
}

// Result is the transformed content handed back to the build engine.
type Result struct {
	Contents   string
	Loader     Loader
	ResolveDir string
	ModuleID   string
}

// Hook is the capability the build engine invokes for every loaded module.
type Hook struct {
	filter   *Filter
	table    *ModuleTable
	injector *Injector
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewHook wires a filter, module table and injector into a transform hook.
func NewHook(filter *Filter, table *ModuleTable, injector *Injector) *Hook {
	return &Hook{
		filter:   filter,
		table:    table,
		injector: injector,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithRecorder sets the metrics recorder.
func (h *Hook) WithRecorder(r metrics.Recorder) *Hook {
	if r != nil {
		h.recorder = r
	}
	return h
}

// Resolve reports whether the module at path will be instrumented.
func (h *Hook) Resolve(path string) bool {
	return h.filter.IsEligible(path)
}

// Transform instruments an eligible module. The boolean is false when the
// module should be left to the build engine untouched.
func (h *Hook) Transform(path string, content []byte) (Result, bool, error) {
	if !h.Resolve(path) {
		if h.filter.Contains(path) {
			h.table.Lookup(path, false)
		}
		h.recorder.IncTransform(metrics.TransformPassThrough)
		return Result{}, false, nil
	}

	rec := h.table.Lookup(path, true)
	out, err := h.injector.Instrument(path, string(content), rec.ModuleID)
	if err != nil {
		h.recorder.IncTransform(metrics.TransformFailed)
		return Result{}, false, err
	}
	if out.Wrapped {
		h.recorder.IncTransform(metrics.TransformRefresh)
	} else {
		h.recorder.IncTransform(metrics.TransformPlain)
	}
	h.logger.Debug("Module instrumented", logfields.ModuleID(rec.ModuleID), slog.Bool("refresh", out.Wrapped))

	return Result{
		Contents:   out.Code,
		Loader:     LoaderFor(path),
		ResolveDir: filepath.Dir(path),
		ModuleID:   rec.ModuleID,
	}, true, nil
}
