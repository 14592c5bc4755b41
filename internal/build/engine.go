package build

import (
	"context"
	"fmt"
	"strings"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
	"git.home.luguber.info/inful/hotbundle/internal/manifest"
)

// Message is one diagnostic reported by the build engine.
type Message struct {
	Text   string
	File   string
	Line   int
	Column int
}

func (m Message) String() string {
	if m.File == "" {
		return m.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", m.File, m.Line, m.Column, m.Text)
}

// Result is what one engine rebuild produces. Metadata is only meaningful
// when Errors is empty.
type Result struct {
	Errors   []Message
	Warnings []Message
	Metadata manifest.Metadata
}

// OK reports whether the generation is eligible for bootstrap and broadcast.
func (r Result) OK() bool { return len(r.Errors) == 0 }

// Engine compiles the configured entry points, calling back into the
// transform hook for every module it loads.
type Engine interface {
	Rebuild(ctx context.Context) Result
	Dispose()
}

// Failure converts an unsuccessful result into a classified build error.
func Failure(gen Generation, r Result) error {
	if r.OK() {
		return nil
	}
	texts := make([]string, 0, len(r.Errors))
	for _, m := range r.Errors {
		texts = append(texts, m.String())
	}
	return ferrors.BuildError(fmt.Sprintf("build failed with %d error(s)", len(r.Errors))).
		WithContext("generation", uint64(gen)).
		WithContext("errors", strings.Join(texts, "\n")).
		Build()
}
