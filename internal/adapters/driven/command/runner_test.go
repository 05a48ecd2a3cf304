package command

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" || !Available("sh") {
		t.Skip("requires a POSIX shell")
	}
}

func TestRunner_Run_Success(t *testing.T) {
	skipWithoutShell(t)

	out, err := NewRunner().Run(context.Background(), "sh", "-c", "printf 'Договор'")
	require.NoError(t, err)
	assert.Equal(t, "Договор", string(out))
}

func TestRunner_Run_ToolNotFound(t *testing.T) {
	_, err := NewRunner().Run(context.Background(), "pdfsift-no-such-tool-xyz")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrToolNotFound))
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	skipWithoutShell(t)

	_, err := NewRunner().Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.False(t, errors.Is(err, domain.ErrToolNotFound))
}

func TestRunner_Run_Timeout(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := NewRunner().Run(ctx, "sh", "-c", "sleep 5")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestTrimStderr(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"short", "  error: bad page\n", len("error: bad page")},
		{"ascii over limit", strings.Repeat("x", maxStderr+10), maxStderr},
		{"cyrillic on boundary", strings.Repeat("я", maxStderr), maxStderr},
		{"cyrillic off boundary", "x" + strings.Repeat("я", maxStderr), maxStderr - 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trimStderr(tt.in)
			assert.Len(t, got, tt.want)
			assert.True(t, utf8.ValidString(got))
		})
	}
}

func TestRunner_Run_MultibyteStderr(t *testing.T) {
	skipWithoutShell(t)

	script := "printf 'x' >&2; i=0; while [ $i -lt 400 ]; do printf 'я' >&2; i=$((i+1)); done; exit 1"
	_, err := NewRunner().Run(context.Background(), "sh", "-c", script)
	require.Error(t, err)
	assert.True(t, utf8.ValidString(err.Error()))
}
