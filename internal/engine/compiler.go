package engine

import (
	"strings"

	"github.com/evanw/esbuild/pkg/api"

	"git.home.luguber.info/inful/hotbundle/internal/hmr"
)

// Compiler compiles one module with esbuild's transform API.
type Compiler struct {
	production bool
}

// NewCompiler returns a compiler. Development output carries inline source maps.
func NewCompiler(production bool) *Compiler {
	return &Compiler{production: production}
}

func (c *Compiler) Compile(path, source string, loader hmr.Loader) (string, error) {
	opts := api.TransformOptions{
		Loader:     esbuildLoader(loader),
		Format:     api.FormatESModule,
		Sourcefile: path,
		JSX:        api.JSXAutomatic,
		Target:     api.ES2019,
		Supported:  map[string]bool{"import-meta": true},
		Sourcemap:  api.SourceMapInline,
	}
	if c.production {
		opts.Sourcemap = api.SourceMapNone
	}
	res := api.Transform(source, opts)
	if len(res.Errors) > 0 {
		return "", &compileError{messages: convertMessages(res.Errors)}
	}
	return string(res.Code), nil
}

type compileError struct {
	messages []string
}

func (e *compileError) Error() string {
	return strings.Join(e.messages, "; ")
}

func esbuildLoader(l hmr.Loader) api.Loader {
	if l == hmr.LoaderTSX {
		return api.LoaderTSX
	}
	return api.LoaderTS
}
