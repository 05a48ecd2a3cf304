package driving

import (
	"context"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
)

// Engine bundles the services of one run over a document root.
type Engine struct {
	Search SearchService
	Cache  CacheService
}

// Factory builds services from effective settings. The CLI receives one
// at startup and tests substitute their own.
type Factory interface {
	// Settings opens the config file. An empty path selects the default.
	Settings(configPath string) (SettingsService, error)

	// OpenCache opens and loads the text cache for a document root.
	OpenCache(ctx context.Context, settings domain.Settings, root string) (CacheService, error)

	// OpenEngine opens the cache and builds the extraction pipeline.
	OpenEngine(ctx context.Context, settings domain.Settings, root string) (*Engine, error)
}
