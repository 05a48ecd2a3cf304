package services

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/logger"
)

// Pipeline runs extraction backends for one document.
//
// Text-layer backends are tried in order until one completes or reports
// the document encrypted. Recognition backends, one per resolution, run
// lowest resolution first and their output is concatenated.
type Pipeline struct {
	textLayer   []driven.ExtractionBackend
	recognition []driven.ExtractionBackend
	repair      driven.PostProcessorPipeline
	mode        domain.RecognitionMode
}

// NewPipeline creates a pipeline. Backends are split by kind, keeping their
// relative order. The repair pipeline is optional.
func NewPipeline(
	backends []driven.ExtractionBackend,
	repair driven.PostProcessorPipeline,
	mode domain.RecognitionMode,
) *Pipeline {
	p := &Pipeline{repair: repair, mode: mode}
	for _, b := range backends {
		switch b.Kind() {
		case domain.BackendTextLayer:
			p.textLayer = append(p.textLayer, b)
		case domain.BackendRecognition:
			p.recognition = append(p.recognition, b)
		}
	}
	return p
}

// Mode returns the recognition mode.
func (p *Pipeline) Mode() domain.RecognitionMode {
	return p.mode
}

// CanRecognize returns true if recognition is enabled and configured.
func (p *Pipeline) CanRecognize() bool {
	return p.mode != domain.RecognitionNever && len(p.recognition) > 0
}

// Pending returns true if recognition for entry can still add text:
// it was deferred, or it stopped before the higher resolutions ran.
// Entries without a pass record are complete.
func (p *Pipeline) Pending(entry domain.Entry) bool {
	if !p.CanRecognize() {
		return false
	}
	if entry.RecognitionPending() {
		return true
	}
	if !entry.OCRStatus.Success() || len(entry.OCRPasses) == 0 {
		return false
	}
	for _, b := range p.recognition {
		if !entry.RecognitionRan(b.Name()) {
			return true
		}
	}
	return false
}

// Extract runs the text layer and, depending on the recognition mode and
// the hint, optical recognition.
func (p *Pipeline) Extract(ctx context.Context, doc domain.Document, hint domain.Hint) domain.Extraction {
	text := p.extractText(ctx, doc)
	known := domain.Entry{Text: text.Text}

	var recognition domain.ExtractionResult
	switch {
	case !p.CanRecognize():
		recognition = domain.SkippedResult()
	case p.mode == domain.RecognitionAlways:
		recognition = p.Recognize(ctx, doc, known, nil)
	case satisfied(hint, text.Text, ""):
		logger.Debug("%s: text layer suffices, recognition deferred", doc.Key)
		recognition = domain.SkippedResult()
	default:
		recognition = p.Recognize(ctx, doc, known, hint)
	}

	return domain.Extraction{TextLayer: text, Recognition: recognition}
}

// Recognize runs the recognition passes that prev has not run yet, lowest
// resolution first, and appends their text to prev's recognition text.
// Together with prev's text layer the accumulated text decides, through
// the hint, whether higher resolutions are needed.
func (p *Pipeline) Recognize(
	ctx context.Context, doc domain.Document, prev domain.Entry, hint domain.Hint,
) domain.ExtractionResult {
	if !p.CanRecognize() {
		return domain.SkippedResult()
	}

	var (
		texts  []string
		names  []string
		errs   []error
		pages  int
		passes = slices.Clone(prev.OCRPasses)
	)
	if strings.TrimSpace(prev.OCR) != "" {
		texts = append(texts, prev.OCR)
	}
	if prev.OCRStatus.Success() && prev.OCRBackend != "" {
		names = append(names, prev.OCRBackend)
	}

	for _, b := range p.recognition {
		if slices.Contains(passes, b.Name()) {
			continue
		}

		result := b.Extract(ctx, doc)
		passes = append(passes, b.Name())
		if result.Status == domain.StatusEncrypted {
			result.Passes = passes
			return result
		}
		if !result.Success() {
			errs = append(errs, result.Err)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		names = append(names, result.Backend)
		if strings.TrimSpace(result.Text) != "" {
			texts = append(texts, result.Text)
		}
		pages = max(pages, result.Pages)

		if hint != nil && hint(prev.Text, strings.Join(texts, "\n")) {
			logger.Debug("%s: satisfied at %s, skipping higher resolutions", doc.Key, result.Backend)
			break
		}
	}

	if len(names) == 0 {
		result := domain.NewFailedResult(p.recognition[0].Name(), errors.Join(errs...))
		result.Passes = passes
		return result
	}
	result := domain.NewTextResult(strings.Join(names, "+"), strings.Join(texts, "\n"), pages)
	result.Passes = passes
	return result
}

func (p *Pipeline) extractText(ctx context.Context, doc domain.Document) domain.ExtractionResult {
	result := domain.SkippedResult()
	for _, b := range p.textLayer {
		result = b.Extract(ctx, doc)
		if result.Success() || result.Status == domain.StatusEncrypted {
			break
		}
	}

	if result.Status != domain.StatusOK || p.repair == nil {
		return result
	}

	repaired, err := p.repair.Process(ctx, result.Text)
	if err != nil {
		logger.Warn("%s: text repair failed, keeping original text: %v", doc.Key, err)
		return result
	}
	return domain.NewTextResult(result.Backend, repaired, result.Pages)
}

// satisfied applies a hint. Without a hint, any non-blank text layer is
// enough to defer recognition.
func satisfied(hint domain.Hint, textLayer, recognition string) bool {
	if hint == nil {
		return strings.TrimSpace(textLayer) != ""
	}
	return hint(textLayer, recognition)
}
