package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/hotbundle/internal/build"
	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/hmr"
	"git.home.luguber.info/inful/hotbundle/internal/logfields"
	"git.home.luguber.info/inful/hotbundle/internal/manifest"
)

// Options configures the esbuild engine. Paths are absolute.
type Options struct {
	Root       string
	OutDir     string
	AppEntry   string
	Vendor     []string
	Production bool
	HMRPath    string
	// Refresh installs the react-refresh runtime from the hmr entry.
	Refresh bool
	Hook    *hmr.Hook
	Logger  *slog.Logger
}

// Engine is an incremental esbuild context.
type Engine struct {
	opts   Options
	ctx    api.BuildContext
	outRel string
	logger *slog.Logger
}

// New creates the esbuild context. Invalid options are configuration errors.
func New(opts Options) (*Engine, error) {
	if opts.Hook == nil {
		return nil, ferrors.InternalError("engine requires a transform hook").Build()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	outRel, err := filepath.Rel(opts.Root, opts.OutDir)
	if err != nil {
		return nil, ferrors.ConfigError("out_dir must be relative to root").WithCause(err).Build()
	}
	e := &Engine{opts: opts, outRel: filepath.ToSlash(outRel), logger: logger}

	ctx, cerr := api.Context(e.buildOptions())
	if cerr != nil {
		texts := make([]string, 0, len(cerr.Errors))
		for _, m := range cerr.Errors {
			texts = append(texts, m.Text)
		}
		return nil, ferrors.ConfigError("invalid build options: " + strings.Join(texts, "; ")).Build()
	}
	e.ctx = ctx
	return e, nil
}

func (e *Engine) buildOptions() api.BuildOptions {
	entries := []api.EntryPoint{
		{InputPath: e.opts.AppEntry, OutputPath: manifest.AppEntry},
		{InputPath: entryModule, OutputPath: manifest.HMREntry},
	}
	for _, v := range e.opts.Vendor {
		entries = append(entries, api.EntryPoint{InputPath: v, OutputPath: v})
	}

	opts := api.BuildOptions{
		AbsWorkingDir:       e.opts.Root,
		EntryPointsAdvanced: entries,
		Bundle:              true,
		Write:               true,
		Metafile:            true,
		Outdir:              e.opts.OutDir,
		EntryNames:          "[name]-[hash]",
		ChunkNames:          "[name]-[hash]",
		AssetNames:          "[name]-[hash]",
		Format:              api.FormatESModule,
		Splitting:           true,
		Platform:            api.PlatformBrowser,
		Target:              api.ES2019,
		JSX:                 api.JSXAutomatic,
		Supported:           map[string]bool{"import-meta": true},
		LogLevel:            api.LogLevelSilent,
		Sourcemap:           api.SourceMapInline,
		Plugins:             []api.Plugin{e.loggerPlugin(), e.runtimePlugin(), e.hookPlugin()},
	}
	if e.opts.Production {
		opts.Sourcemap = api.SourceMapNone
		opts.MinifyWhitespace = true
		opts.MinifyIdentifiers = true
		opts.MinifySyntax = true
	}
	return opts
}

// Rebuild runs one incremental build. Metadata is filled only on success.
func (e *Engine) Rebuild(_ context.Context) build.Result {
	res := e.ctx.Rebuild()
	out := build.Result{
		Errors:   convertBuildMessages(res.Errors),
		Warnings: convertBuildMessages(res.Warnings),
	}
	if !out.OK() {
		return out
	}
	md, err := ParseMetadata(res.Metafile, e.outRel)
	if err != nil {
		out.Errors = append(out.Errors, build.Message{Text: err.Error()})
		return out
	}
	out.Metadata = md
	return out
}

// Dispose releases the esbuild context.
func (e *Engine) Dispose() {
	if e.ctx != nil {
		e.ctx.Dispose()
	}
}

func (e *Engine) loggerPlugin() api.Plugin {
	return api.Plugin{
		Name: "hotbundle-logger",
		Setup: func(pb api.PluginBuild) {
			var start time.Time
			pb.OnStart(func() (api.OnStartResult, error) {
				start = time.Now()
				e.logger.Info("Compiling", logfields.Path(filepath.Base(e.opts.OutDir)))
				return api.OnStartResult{}, nil
			})
			pb.OnEnd(func(r *api.BuildResult) (api.OnEndResult, error) {
				e.logger.Debug("Compilation finished",
					logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
					logfields.Warnings(len(r.Warnings)),
					logfields.Errors(len(r.Errors)))
				return api.OnEndResult{}, nil
			})
		},
	}
}

// runtimePlugin serves hmr:runtime and the hmr entry from embedded sources.
func (e *Engine) runtimePlugin() api.Plugin {
	return api.Plugin{
		Name: "hmr-runtime",
		Setup: func(pb api.PluginBuild) {
			pb.OnResolve(api.OnResolveOptions{Filter: `^hmr:(runtime|entry)$`},
				func(args api.OnResolveArgs) (api.OnResolveResult, error) {
					return api.OnResolveResult{Path: args.Path, Namespace: runtimeNS}, nil
				})
			pb.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: runtimeNS},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					var src string
					switch args.Path {
					case runtimeModule:
						src = RuntimeSource(e.opts.HMRPath)
					case entryModule:
						src = EntrySource(e.opts.Refresh)
					default:
						return api.OnLoadResult{}, fmt.Errorf("unknown runtime module %q", args.Path)
					}
					return api.OnLoadResult{Contents: &src, Loader: api.LoaderJS, ResolveDir: e.opts.Root}, nil
				})
		},
	}
}

// hookPlugin routes every source file through the transform hook. Files the
// hook passes through are loaded by esbuild itself.
func (e *Engine) hookPlugin() api.Plugin {
	return api.Plugin{
		Name: "hmr",
		Setup: func(pb api.PluginBuild) {
			pb.OnLoad(api.OnLoadOptions{Filter: `.*`, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if !e.opts.Hook.Resolve(args.Path) {
						return api.OnLoadResult{}, nil
					}
					content, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, nil
					}
					res, ok, err := e.opts.Hook.Transform(args.Path, content)
					if err != nil {
						return api.OnLoadResult{}, err
					}
					if !ok {
						return api.OnLoadResult{}, nil
					}
					return api.OnLoadResult{
						Contents:   &res.Contents,
						Loader:     esbuildLoader(res.Loader),
						ResolveDir: res.ResolveDir,
					}, nil
				})
		},
	}
}

func convertBuildMessages(msgs []api.Message) []build.Message {
	out := make([]build.Message, 0, len(msgs))
	for _, m := range msgs {
		bm := build.Message{Text: m.Text}
		if m.PluginName != "" {
			bm.Text = "[plugin " + m.PluginName + "] " + m.Text
		}
		if m.Location != nil {
			bm.File = m.Location.File
			bm.Line = m.Location.Line
			bm.Column = m.Location.Column
		}
		out = append(out, bm)
	}
	return out
}

func convertMessages(msgs []api.Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range convertBuildMessages(msgs) {
		out = append(out, m.String())
	}
	return out
}

var _ build.Engine = (*Engine)(nil)
