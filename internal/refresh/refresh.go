// Package refresh provides the collaborators that add React Refresh
// registrations to compiled module code.
package refresh

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/hotbundle/internal/foundation/errors"
)

// Passthrough returns code unchanged. Modules then never carry the refresh
// marker and are emitted with only the hot-context preamble.
type Passthrough struct{}

func (Passthrough) Refresh(_ string, code string) (string, error) { return code, nil }

// Command pipes compiled code through an external program (typically a node
// script running the react-refresh babel plugin) and returns its stdout.
// The module path is exported as HOTBUNDLE_FILE.
type Command struct {
	argv    []string
	timeout time.Duration
}

// NewCommand returns a Command running argv. A zero timeout means none.
func NewCommand(argv []string, timeout time.Duration) (*Command, error) {
	if len(argv) == 0 || strings.TrimSpace(argv[0]) == "" {
		return nil, ferrors.ConfigError("refresh.command must name a program").Build()
	}
	return &Command{argv: append([]string(nil), argv...), timeout: timeout}, nil
}

func (c *Command) Refresh(path string, code string) (string, error) {
	ctx := context.Background()
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = strings.NewReader(code)
	cmd.Env = append(os.Environ(), "HOTBUNDLE_FILE="+path)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", ferrors.TransformError(fmt.Sprintf("refresh command failed: %s", msg)).
			WithCause(err).WithContext("path", path).Build()
	}
	return stdout.String(), nil
}
