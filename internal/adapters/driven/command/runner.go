// Package command runs external programs such as poppler and tesseract.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Ensure Runner implements the interface.
var _ driven.CommandRunner = (*Runner)(nil)

// waitDelay bounds how long a killed process may hold its pipes open.
const waitDelay = 2 * time.Second

// maxStderr is the amount of standard error kept in failure messages.
const maxStderr = 512

// Runner executes programs with exec.CommandContext, so a cancelled or
// expired context kills the child process.
type Runner struct{}

// NewRunner creates a new command runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the named program and returns its standard output.
// A program missing from PATH yields domain.ErrToolNotFound.
func (r *Runner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.Debug("exec %s %s", name, strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%s: %w", name, ctxErr)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", name, domain.ErrToolNotFound)
		}
		msg := trimStderr(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", name, err, msg)
	}

	return stdout.Bytes(), nil
}

// trimStderr keeps at most maxStderr bytes of s without splitting a rune.
func trimStderr(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxStderr {
		return s
	}
	cut := maxStderr
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// Available reports whether a program can be found in PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
