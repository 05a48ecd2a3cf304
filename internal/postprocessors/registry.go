package postprocessors

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
)

// BuilderFunc creates a PostProcessor from step parameters.
// A nil config selects the processor defaults.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry maps repair step names to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a builder. Name should match the processor's Name().
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.builders[name] = builder
}

// Build creates a processor by name.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	builder, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: repair step %q (available: %s)",
			domain.ErrUnsupportedType, name, strings.Join(r.Names(), ", "))
	}
	return builder(cfg)
}

// Has returns true if a step with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.builders[name]
	return ok
}

// Names returns the registered step names in sorted order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}

// BuildPipeline builds a pipeline from step specs in the given order.
// Blank specs are skipped. See ParseStep for the spec syntax.
func (r *Registry) BuildPipeline(specs []string) (*Pipeline, error) {
	pipeline := NewPipeline()
	for _, spec := range specs {
		name, cfg, err := ParseStep(spec)
		if err != nil {
			return nil, err
		}
		if name == "" {
			continue
		}
		processor, err := r.Build(name, cfg)
		if err != nil {
			return nil, err
		}
		pipeline.Add(processor)
	}
	return pipeline, nil
}

// ParseStep splits a step spec of the form name[:key=value[;key=value]]
// into its name and parameters. Values stay strings; builders convert them.
func ParseStep(spec string) (string, map[string]any, error) {
	name, params, hasParams := strings.Cut(strings.TrimSpace(spec), ":")
	name = strings.TrimSpace(name)
	if !hasParams {
		return name, nil, nil
	}
	if name == "" {
		return "", nil, fmt.Errorf("%w: repair step %q has no name", domain.ErrInvalidInput, spec)
	}

	cfg := make(map[string]any)
	for _, pair := range strings.Split(params, ";") {
		if strings.TrimSpace(pair) == "" {
			continue
		}
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return "", nil, fmt.Errorf("%w: repair step %q: expected key=value, got %q",
				domain.ErrInvalidInput, name, pair)
		}
		cfg[key] = strings.TrimSpace(value)
	}
	return name, cfg, nil
}
