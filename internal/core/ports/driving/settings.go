package driving

import "github.com/custodia-labs/pdfsift/internal/core/domain"

// SettingsService resolves and edits the persistent configuration.
type SettingsService interface {
	// Get returns the defaults overridden by stored values.
	Get() (domain.Settings, error)

	// Load returns the effective settings for a run: defaults, stored
	// values, then overrides given as text by config key. The result is
	// validated.
	Load(overrides map[string]string) (domain.Settings, error)

	// Set parses, validates and stores a single value.
	Set(key, raw string) error

	// Unset removes a stored value so its default applies again.
	Unset(key string) error

	// Keys returns every supported config key in sorted order.
	Keys() []string

	// Path returns the config file location.
	Path() string
}
