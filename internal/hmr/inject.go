package hmr

import (
	"encoding/json"
	"log/slog"
	"strings"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
)

// RuntimeImport is the virtual module the preamble imports the hot runtime from.
const RuntimeImport = "hmr:runtime"

const idPlaceholder = "$id$"

// preamble binds import.meta.hot to a hot context scoped to one module id.
const preamble = `import * as __hmr__ from "` + RuntimeImport + `";
if (import.meta) {
  import.meta.hot = __hmr__.createHotContext(` + idPlaceholder + `);
}
`

const refreshGuard = `
if (!window.$RefreshReg$ || !window.$RefreshSig$ || !window.$RefreshRuntime$) {
  console.warn('[hotbundle] refresh runtime not installed; component state will not be preserved.');
} else {
  var prevRefreshReg = window.$RefreshReg$;
  var prevRefreshSig = window.$RefreshSig$;
  window.$RefreshReg$ = (type, id) => {
    window.$RefreshRuntime$.register(type, ` + idPlaceholder + ` + id);
  };
  window.$RefreshSig$ = window.$RefreshRuntime$.createSignatureFunctionForTransform;
}
`

const refreshTrailer = `
window.$RefreshReg$ = prevRefreshReg;
window.$RefreshSig$ = prevRefreshSig;
import.meta.hot.accept(({ module }) => {
  window.$RefreshRuntime$.performReactRefresh();
});
`

// Compiler turns instrumented source into executable ES module code.
type Compiler interface {
	Compile(path, source string, loader Loader) (string, error)
}

// Refresher rewrites compiled code so component definitions register with
// the refresh runtime through $RefreshReg$ calls.
type Refresher interface {
	Refresh(path, code string) (string, error)
}

// Instrumented is the output of one module instrumentation.
type Instrumented struct {
	Code    string
	Wrapped bool
}

// Injector applies the hot-update preamble and conditional refresh wrapping.
type Injector struct {
	compiler  Compiler
	refresher Refresher
	logger    *slog.Logger
}

// NewInjector creates an injector. refresher may be nil, in which case modules
// are never refresh-wrapped.
func NewInjector(compiler Compiler, refresher Refresher) *Injector {
	return &Injector{compiler: compiler, refresher: refresher, logger: slog.Default()}
}

// WithLogger sets the logger used for non-fatal refresh failures.
func (in *Injector) WithLogger(l *slog.Logger) *Injector {
	if l != nil {
		in.logger = l
	}
	return in
}

// Preamble returns the instrumentation preamble bound to moduleID.
func Preamble(moduleID string) string {
	return strings.ReplaceAll(preamble, idPlaceholder, quoteJS(moduleID))
}

// Instrument prepends the preamble to source, compiles it and, when the
// refresh generator marks the module as refreshable, wraps the result.
// Only compilation can fail; refresh problems fall back to the compiled code.
func (in *Injector) Instrument(path, source, moduleID string) (Instrumented, error) {
	compiled, err := in.compiler.Compile(path, Preamble(moduleID)+source, LoaderFor(path))
	if err != nil {
		return Instrumented{}, ferrors.WrapError(err, ferrors.CategoryTransform, "module compilation failed").
			WithContext("path", path).
			WithContext("module_id", moduleID).
			Build()
	}

	if in.refresher == nil {
		return Instrumented{Code: compiled}, nil
	}
	refreshed, err := in.refresher.Refresh(path, compiled)
	if err != nil {
		in.logger.Debug("Refresh transform failed; using compiled output",
			logfields.Path(path), logfields.ModuleID(moduleID), logfields.Error(err))
		return Instrumented{Code: compiled}, nil
	}
	if refreshed == "" || !HasRefreshMarker(refreshed) {
		return Instrumented{Code: compiled}, nil
	}
	return Instrumented{Code: WrapRefresh(refreshed, moduleID), Wrapped: true}, nil
}

// WrapRefresh surrounds refresh-instrumented code with the registration guard
// and the accept callback that triggers a refresh.
func WrapRefresh(code, moduleID string) string {
	var b strings.Builder
	b.Grow(len(code) + len(refreshGuard) + len(refreshTrailer) + 2*len(moduleID))
	b.WriteString(strings.ReplaceAll(refreshGuard, idPlaceholder, quoteJS(moduleID)))
	b.WriteString(code)
	b.WriteString(refreshTrailer)
	return b.String()
}

// quoteJS renders s as a JavaScript string literal.
func quoteJS(s string) string {
	b, err := json.Marshal(s)
	if err != nil {
		return `""`
	}
	return string(b)
}
