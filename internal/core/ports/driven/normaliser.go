package driven

// ContentNormaliser canonicalises text for matching.
// Every method must be deterministic, pure, total and idempotent.
type ContentNormaliser interface {
	// Light case-folds text. Used for text-layer text.
	Light(text string) string

	// Strict case-folds text and removes runes outside the configured
	// alphabet. Used for recognition text.
	Strict(text string) string
}
