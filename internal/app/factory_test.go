package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

func newTestFactory(t *testing.T, available bool) *Factory {
	t.Helper()
	return &Factory{
		DataDir:   t.TempDir(),
		Available: func(string) bool { return available },
	}
}

func TestFactory_Settings(t *testing.T) {
	f := newTestFactory(t, false)

	svc, err := f.Settings("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.DataDir, "config.toml"), svc.Path())

	explicit := filepath.Join(t.TempDir(), "custom.toml")
	svc, err = f.Settings(explicit)
	require.NoError(t, err)
	assert.Equal(t, explicit, svc.Path())
}

func TestFactory_CachePath(t *testing.T) {
	f := newTestFactory(t, false)
	settings := domain.DefaultSettings()
	root := t.TempDir()

	path, err := f.CachePath(settings, root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(f.DataDir, "cache"), filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, ".json"))
	assert.Len(t, filepath.Base(path), 16+len(".json"))

	again, err := f.CachePath(settings, root)
	require.NoError(t, err)
	assert.Equal(t, path, again)

	other, err := f.CachePath(settings, t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, path, other)

	settings.CacheBackend = domain.CacheBackendSQLite
	path, err = f.CachePath(settings, root)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".db"))

	settings.CachePath = "/tmp/explicit.db"
	path, err = f.CachePath(settings, root)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/explicit.db", path)

	settings.CacheBackend = domain.CacheBackendMemory
	path, err = f.CachePath(settings, root)
	require.NoError(t, err)
	assert.Equal(t, "", path)
}

func TestFactory_Repository(t *testing.T) {
	f := newTestFactory(t, false)
	root := t.TempDir()

	tests := []struct {
		backend domain.CacheBackend
		check   func(t *testing.T, repo any)
	}{
		{domain.CacheBackendJSON, func(t *testing.T, repo any) { assert.IsType(t, &jsonfile.Repository{}, repo) }},
		{domain.CacheBackendSQLite, func(t *testing.T, repo any) { assert.IsType(t, &sqlite.Store{}, repo) }},
		{domain.CacheBackendMemory, func(t *testing.T, repo any) { assert.IsType(t, &memory.EntryRepository{}, repo) }},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			settings := domain.DefaultSettings()
			settings.CacheBackend = tt.backend

			repo, err := f.Repository(settings, root)
			require.NoError(t, err)
			defer repo.Close()
			tt.check(t, repo)
		})
	}

	settings := domain.DefaultSettings()
	settings.CacheBackend = "redis"
	_, err := f.Repository(settings, root)
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestFactory_Pipeline(t *testing.T) {
	t.Run("recognition needs external tools", func(t *testing.T) {
		p, err := newTestFactory(t, false).Pipeline(domain.DefaultSettings())
		require.NoError(t, err)
		assert.False(t, p.CanRecognize())
	})

	t.Run("recognition with tools present", func(t *testing.T) {
		p, err := newTestFactory(t, true).Pipeline(domain.DefaultSettings())
		require.NoError(t, err)
		assert.True(t, p.CanRecognize())
		assert.Equal(t, domain.RecognitionFallback, p.Mode())
	})

	t.Run("recognition disabled", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.RecognitionMode = domain.RecognitionNever

		p, err := newTestFactory(t, true).Pipeline(settings)
		require.NoError(t, err)
		assert.False(t, p.CanRecognize())
	})

	t.Run("unknown engines", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.TextEngines = []string{"mutool"}
		_, err := newTestFactory(t, true).Pipeline(settings)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)

		settings = domain.DefaultSettings()
		settings.OCREngines = []string{"easyocr"}
		_, err = newTestFactory(t, true).Pipeline(settings)
		assert.ErrorIs(t, err, domain.ErrUnsupportedType)
	})

	t.Run("no usable text engine", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.TextEngines = []string{"pdftotext"}
		_, err := newTestFactory(t, false).Pipeline(settings)
		assert.Error(t, err)
	})

	t.Run("unknown repair step", func(t *testing.T) {
		settings := domain.DefaultSettings()
		settings.Repair = []string{"spellcheck"}
		_, err := newTestFactory(t, false).Pipeline(settings)
		assert.Error(t, err)
	})
}

func TestFactory_OpenEngine(t *testing.T) {
	f := newTestFactory(t, false)
	root := t.TempDir()
	settings := domain.DefaultSettings()
	ctx := context.Background()

	engine, err := f.OpenEngine(ctx, settings, root)
	require.NoError(t, err)
	require.NotNil(t, engine.Search)
	require.NotNil(t, engine.Cache)

	// Nothing is written for an empty corpus.
	report, err := engine.Search.Search(ctx, nil, "договор", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	require.NoError(t, engine.Cache.Flush(ctx))
	require.NoError(t, engine.Cache.Close())

	_, err = os.Stat(engine.Cache.Path())
	assert.True(t, os.IsNotExist(err))
}

func TestFactory_OpenEngine_BadAlphabet(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Alphabet = "klingon"

	_, err := newTestFactory(t, false).OpenEngine(context.Background(), settings, t.TempDir())
	assert.Error(t, err)
}
