package flamegraph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultScript is the external renderer looked up on PATH.
const DefaultScript = "flamegraph.pl"

// ScriptRenderer runs an external flamegraph.pl compatible program once per
// render, feeding folded lines on stdin and reading the SVG from stdout.
type ScriptRenderer struct {
	Path    string
	Timeout time.Duration // 0 disables the per-render timeout
	Log     logrus.FieldLogger
}

// NewScriptRenderer creates a renderer for the program at path.
func NewScriptRenderer(path string, timeout time.Duration, log logrus.FieldLogger) *ScriptRenderer {
	if path == "" {
		path = DefaultScript
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ScriptRenderer{
		Path:    path,
		Timeout: timeout,
		Log:     log,
	}
}

// Render runs the program to completion. Its stdin is closed once every
// folded line has been written, and the process is always waited for.
func (s *ScriptRenderer) Render(ctx context.Context, opts Options, folded io.Reader) (string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, s.Path, opts.Args()...)
	setProcessGroup(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", fmt.Errorf("%s: stdin pipe: %w", s.Path, err)
	}

	log := s.Log.WithFields(logrus.Fields{"renderer": s.Path, "title": opts.Title, "width": opts.Width})
	log.Debug("starting renderer")
	start := time.Now()
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("%s: start: %w", s.Path, err)
	}

	_, writeErr := io.Copy(stdin, folded)
	closeErr := stdin.Close()
	waitErr := cmd.Wait()

	if waitErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", s.Path, ctxErr)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", s.Path, waitErr, msg)
		}
		return "", fmt.Errorf("%s: %w", s.Path, waitErr)
	}
	if err := errors.Join(writeErr, closeErr); err != nil {
		return "", fmt.Errorf("%s: writing folded stacks: %w", s.Path, err)
	}

	log.WithField("duration", time.Since(start)).Debug("renderer finished")
	return stdout.String(), nil
}
