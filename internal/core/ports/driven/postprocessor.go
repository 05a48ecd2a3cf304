package driven

import "context"

// PostProcessor repairs extracted text before it is cached.
// PostProcessors are chained in a pipeline (e.g., glyph remapping).
// Repairs are best-effort: their correctness is encoding- and font-specific.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process returns the repaired text.
	Process(ctx context.Context, text string) (string, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the text through all processors in order.
	Process(ctx context.Context, text string) (string, error)
}
