package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/custodia-labs/pdfsift/cgo/tesseract"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/command"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/ocr"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/ocr/tesseractcli"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/pdf/gopdf"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/pdf/poppler"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/jsonfile"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pdfsift/internal/adapters/driven/textlayer"
	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driving"
	"github.com/custodia-labs/pdfsift/internal/core/services"
	"github.com/custodia-labs/pdfsift/internal/logger"
	"github.com/custodia-labs/pdfsift/internal/normalisers/profile"
	"github.com/custodia-labs/pdfsift/internal/postprocessors"
)

// Ensure Factory implements the interface.
var _ driving.Factory = (*Factory)(nil)

// Factory builds services from settings.
type Factory struct {
	// DataDir holds the default config file and caches. Defaults to ~/.pdfsift.
	DataDir string

	// Runner executes poppler and tesseract. Defaults to command.NewRunner().
	Runner driven.CommandRunner

	// Available reports whether an external program can be run.
	// Defaults to command.Available.
	Available func(name string) bool
}

// New creates a factory using the default data directory.
func New() *Factory {
	return &Factory{}
}

func (f *Factory) dataDir() (string, error) {
	if f.DataDir != "" {
		return f.DataDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".pdfsift"), nil
}

func (f *Factory) runner() driven.CommandRunner {
	if f.Runner != nil {
		return f.Runner
	}
	return command.NewRunner()
}

func (f *Factory) available(name string) bool {
	if f.Available != nil {
		return f.Available(name)
	}
	return command.Available(name)
}

// Settings opens the TOML config store.
func (f *Factory) Settings(configPath string) (driving.SettingsService, error) {
	var (
		store *file.ConfigStore
		err   error
	)
	if configPath != "" {
		store, err = file.NewConfigStoreAt(configPath)
	} else {
		var dir string
		if dir, err = f.dataDir(); err == nil {
			store, err = file.NewConfigStore(dir)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	return services.NewSettingsService(store), nil
}

// CachePath returns where the cache for root lives. Without an explicit
// path each root gets its own file named after a hash of its absolute path.
func (f *Factory) CachePath(settings domain.Settings, root string) (string, error) {
	if settings.CacheBackend == domain.CacheBackendMemory {
		return "", nil
	}
	if settings.CachePath != "" {
		return settings.CachePath, nil
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", root, err)
	}
	dir, err := f.dataDir()
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256([]byte(abs))
	name := hex.EncodeToString(sum[:])[:16]
	ext := ".json"
	if settings.CacheBackend == domain.CacheBackendSQLite {
		ext = ".db"
	}
	return filepath.Join(dir, "cache", name+ext), nil
}

// Repository opens the configured entry repository.
func (f *Factory) Repository(settings domain.Settings, root string) (driven.EntryRepository, error) {
	path, err := f.CachePath(settings, root)
	if err != nil {
		return nil, err
	}

	switch settings.CacheBackend {
	case domain.CacheBackendMemory:
		return memory.NewEntryRepository(), nil
	case domain.CacheBackendSQLite:
		return sqlite.NewStore(path)
	case domain.CacheBackendJSON, "":
		return jsonfile.New(path)
	default:
		return nil, fmt.Errorf("%w: cache backend %q", domain.ErrUnsupportedType, settings.CacheBackend)
	}
}

// OpenCache opens and loads the text cache for root.
func (f *Factory) OpenCache(ctx context.Context, settings domain.Settings, root string) (driving.CacheService, error) {
	return f.openStore(ctx, settings, root)
}

func (f *Factory) openStore(ctx context.Context, settings domain.Settings, root string) (*services.TextStore, error) {
	repo, err := f.Repository(settings, root)
	if err != nil {
		return nil, err
	}
	store := services.NewTextStore(repo)
	if _, err := store.LoadAll(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	return store, nil
}

// OpenEngine opens the cache and builds the search service.
func (f *Factory) OpenEngine(ctx context.Context, settings domain.Settings, root string) (*driving.Engine, error) {
	pipeline, err := f.Pipeline(settings)
	if err != nil {
		return nil, err
	}

	normaliser, err := profile.New(settings.Alphabet)
	if err != nil {
		return nil, err
	}

	store, err := f.openStore(ctx, settings, root)
	if err != nil {
		return nil, err
	}

	search := services.NewSearchService(pipeline, store, normaliser, services.SearchOptions{
		Workers:     settings.Workers,
		Timeout:     settings.Timeout,
		RetryFailed: settings.RetryFailed,
	})
	return &driving.Engine{Search: search, Cache: store}, nil
}

// Pipeline builds the extraction pipeline from the configured engines.
// Engines whose programs are missing are skipped with a warning.
func (f *Factory) Pipeline(settings domain.Settings) (*services.Pipeline, error) {
	runner := f.runner()
	tools := poppler.Tools{
		PDFInfo:   settings.Tool("pdfinfo"),
		PDFToText: settings.Tool("pdftotext"),
		PDFToPPM:  settings.Tool("pdftoppm"),
	}

	textEngines, err := f.textEngines(settings, runner, tools)
	if err != nil {
		return nil, err
	}
	backends := []driven.ExtractionBackend{textlayer.New(textEngines...)}

	if settings.RecognitionMode != domain.RecognitionNever {
		ocrBackends, err := f.recognitionBackends(settings, runner, tools)
		if err != nil {
			return nil, err
		}
		backends = append(backends, ocrBackends...)
	}

	var repair driven.PostProcessorPipeline
	if len(settings.Repair) > 0 {
		registry := postprocessors.NewRegistry()
		postprocessors.RegisterDefaults(registry)
		chain, err := registry.BuildPipeline(settings.Repair)
		if err != nil {
			return nil, err
		}
		repair = chain
	}

	return services.NewPipeline(backends, repair, settings.RecognitionMode), nil
}

func (f *Factory) textEngines(
	settings domain.Settings, runner driven.CommandRunner, tools poppler.Tools,
) ([]driven.TextLayerEngine, error) {
	var engines []driven.TextLayerEngine
	for _, name := range settings.TextEngines {
		switch name {
		case gopdf.Name:
			engines = append(engines, gopdf.New())
		case poppler.TextEngineName:
			if !f.available(tools.PDFToText) || !f.available(tools.PDFInfo) {
				logger.Warn("%s not found, text-layer engine skipped", tools.PDFToText)
				continue
			}
			engines = append(engines, poppler.NewTextEngine(runner, tools))
		default:
			return nil, fmt.Errorf("%w: text-layer engine %q", domain.ErrUnsupportedType, name)
		}
	}
	if len(engines) == 0 {
		return nil, errors.New("no text-layer engine available")
	}
	return engines, nil
}

func (f *Factory) recognitionBackends(
	settings domain.Settings, runner driven.CommandRunner, tools poppler.Tools,
) ([]driven.ExtractionBackend, error) {
	var recognizers []driven.Recognizer
	for _, name := range settings.OCREngines {
		switch name {
		case tesseract.Name:
			if !tesseract.Available() {
				logger.Debug("%s not compiled in, skipped", tesseract.Name)
				continue
			}
			recognizers = append(recognizers, tesseract.New())
		case tesseractcli.Name:
			tool := settings.Tool("tesseract")
			if !f.available(tool) {
				logger.Warn("%s not found, recognition engine skipped", tool)
				continue
			}
			recognizers = append(recognizers, tesseractcli.New(runner, tool))
		default:
			return nil, fmt.Errorf("%w: recognition engine %q", domain.ErrUnsupportedType, name)
		}
	}

	if len(recognizers) == 0 {
		logger.Warn("no recognition engine available, scanned documents will not be searched")
		return nil, nil
	}
	if !f.available(tools.PDFToPPM) || !f.available(tools.PDFInfo) {
		logger.Warn("%s not found, scanned documents will not be searched", tools.PDFToPPM)
		return nil, nil
	}

	rasterizer := poppler.NewRasterizer(runner, tools)
	dpis := slices.Compact(slices.Sorted(slices.Values(settings.DPIs)))

	backends := make([]driven.ExtractionBackend, 0, len(dpis))
	for _, dpi := range dpis {
		backends = append(backends, ocr.New(rasterizer, recognizers, dpi, settings.Languages))
	}
	return backends, nil
}
