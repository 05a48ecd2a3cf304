package driven

// ConfigStore persists user configuration under dot-notation keys such as
// "recognition.dpi". Values keep the types the store decodes them as;
// SettingsService converts them.
type ConfigStore interface {
	// Get returns the stored value and whether the key is set.
	Get(key string) (any, bool)

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Unset removes a key and persists immediately. Missing keys are ignored.
	Unset(key string) error

	// Keys returns the stored keys in sorted order.
	Keys() []string

	// Path returns the configuration location.
	Path() string
}
