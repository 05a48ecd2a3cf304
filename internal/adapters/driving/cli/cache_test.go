package cli

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func seedCache(t *testing.T) *fakeFactory {
	t.Helper()
	f := setupTestServices(t, nil, nil)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	f.repo = memory.NewEntryRepositoryWith(map[string]domain.Entry{
		"a.pdf": {
			Text: "Договор поставки", TextStatus: domain.StatusOK, TextBackend: "gopdf",
			OCRStatus: domain.StatusSkipped, ExtractedAt: at,
		},
		"scans/b.pdf": {
			OCR: "ДОГОВОР", TextStatus: domain.StatusEmpty, OCRStatus: domain.StatusOK,
			OCRBackend: "tesseract@100dpi", ExtractedAt: at,
		},
		"locked.pdf": {
			TextStatus: domain.StatusEncrypted, OCRStatus: domain.StatusEncrypted, ExtractedAt: at,
		},
	})
	return f
}

func TestCacheCmd_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range cacheCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"path", "stats", "show", "export"} {
		assert.True(t, names[want], "missing cache %s", want)
	}
}

func TestCachePathCmd_InMemory(t *testing.T) {
	seedCache(t)

	stdout, _, err := execute(t, "cache", "path")

	require.NoError(t, err)
	assert.Equal(t, "(in memory)\n", stdout)
}

func TestCacheCmd_UsesRootFlag(t *testing.T) {
	f := seedCache(t)

	_, _, err := execute(t, "cache", "path", "--root", "/srv/docs")

	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/docs"}, f.roots)
}

func TestCacheStatsCmd(t *testing.T) {
	seedCache(t)

	stdout, _, err := execute(t, "cache", "stats")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Entries:    3")
	assert.Contains(t, stdout, "Encrypted:  1")
	assert.Contains(t, stdout, "Unreadable: 0")
	assert.Contains(t, stdout, "skipped    1 (not attempted)")
}

func TestCacheShowCmd(t *testing.T) {
	seedCache(t)

	stdout, _, err := execute(t, "cache", "show", "scans/b.pdf")

	require.NoError(t, err)
	assert.Contains(t, stdout, "key: scans/b.pdf\n")
	assert.Contains(t, stdout, "ocr: ДОГОВОР\n")
	assert.Contains(t, stdout, "ocr_backend: tesseract@100dpi\n")
}

func TestCacheShowCmd_NotFound(t *testing.T) {
	seedCache(t)

	_, _, err := execute(t, "cache", "show", "missing.pdf")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCacheExportCmd(t *testing.T) {
	tests := []struct {
		format    string
		unmarshal func([]byte, any) error
	}{
		{"json", json.Unmarshal},
		{"yaml", yaml.Unmarshal},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			seedCache(t)

			stdout, _, err := execute(t, "cache", "export", "--format", tt.format)
			require.NoError(t, err)

			var got map[string]domain.Entry
			require.NoError(t, tt.unmarshal([]byte(stdout), &got))
			require.Len(t, got, 3)
			assert.Equal(t, "Договор поставки", got["a.pdf"].Text)
			assert.Equal(t, domain.StatusEncrypted, got["locked.pdf"].TextStatus)
			assert.True(t, got["scans/b.pdf"].ExtractedAt.Equal(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)))
		})
	}
}

func TestCacheExportCmd_JSONKeepsCyrillicReadable(t *testing.T) {
	seedCache(t)

	stdout, _, err := execute(t, "cache", "export")

	require.NoError(t, err)
	assert.Contains(t, stdout, `"text": "Договор поставки"`)
}

func TestExportEntries_UnsupportedFormat(t *testing.T) {
	_, err := exportEntries(nil, "xml")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}
