package postprocessors

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/custodia-labs/pdfsift/internal/core/domain"
	"github.com/custodia-labs/pdfsift/internal/core/ports/driven"
	"github.com/custodia-labs/pdfsift/internal/postprocessors/glyphmap"
	"github.com/custodia-labs/pdfsift/internal/postprocessors/whitespace"
)

// echoStep records the parameters it was built with.
type echoStep struct {
	name string
	cfg  map[string]any
}

func (s *echoStep) Name() string { return s.name }
func (s *echoStep) Process(_ context.Context, text string) (string, error) {
	return text, nil
}

func echoBuilder(name string) BuilderFunc {
	return func(cfg map[string]any) (driven.PostProcessor, error) {
		return &echoStep{name: name, cfg: cfg}, nil
	}
}

func TestParseStep(t *testing.T) {
	tests := []struct {
		spec    string
		name    string
		cfg     map[string]any
		wantErr bool
	}{
		{spec: "whitespace", name: "whitespace"},
		{spec: "  whitespace  ", name: "whitespace"},
		{spec: "", name: ""},
		{spec: "whitespace:", name: "whitespace", cfg: map[string]any{}},
		{
			spec: "whitespace:max_blank_lines=0",
			name: "whitespace",
			cfg:  map[string]any{"max_blank_lines": "0"},
		},
		{
			spec: "cp1252_cyrillic: min_word = 3 ; mode=strict;",
			name: "cp1252_cyrillic",
			cfg:  map[string]any{"min_word": "3", "mode": "strict"},
		},
		{spec: ":min_word=3", wantErr: true},
		{spec: "whitespace:max_blank_lines", wantErr: true},
		{spec: "whitespace:=2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			name, cfg, err := ParseStep(tt.spec)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.name {
				t.Errorf("name = %q, want %q", name, tt.name)
			}
			if !reflect.DeepEqual(cfg, tt.cfg) {
				t.Errorf("cfg = %v, want %v", cfg, tt.cfg)
			}
		})
	}
}

func TestRegistry_BuildPassesParameters(t *testing.T) {
	r := NewRegistry()
	r.Register("echo", echoBuilder("echo"))

	p, err := r.BuildPipeline([]string{"echo:a=1;b=two", "", "echo"})
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}
	if got := p.Names(); !reflect.DeepEqual(got, []string{"echo", "echo"}) {
		t.Fatalf("steps = %v", got)
	}

	first := p.processors[0].(*echoStep)
	if first.cfg["a"] != "1" || first.cfg["b"] != "two" {
		t.Errorf("unexpected parameters %v", first.cfg)
	}
	if second := p.processors[1].(*echoStep); second.cfg != nil {
		t.Errorf("expected nil parameters for bare step, got %v", second.cfg)
	}
}

func TestRegistry_UnknownStep(t *testing.T) {
	r := NewRegistry()
	r.Register("zeta", echoBuilder("zeta"))
	r.Register("alpha", echoBuilder("alpha"))

	if got := r.Names(); !reflect.DeepEqual(got, []string{"alpha", "zeta"}) {
		t.Errorf("Names() = %v", got)
	}

	_, err := r.Build("missing", nil)
	if !errors.Is(err, domain.ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if !strings.Contains(err.Error(), "alpha, zeta") {
		t.Errorf("error should list available steps: %v", err)
	}

	if _, err := r.BuildPipeline([]string{"alpha", "missing:x=1"}); !errors.Is(err, domain.ErrUnsupportedType) {
		t.Errorf("expected pipeline build to fail, got %v", err)
	}
	if _, err := r.BuildPipeline([]string{"alpha:broken"}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected malformed spec to fail, got %v", err)
	}
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	for _, name := range []string{glyphmap.Name, whitespace.Name} {
		if !r.Has(name) {
			t.Errorf("%q not registered", name)
		}
	}
}

func TestDefaultRepairChain(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	p, err := r.BuildPipeline([]string{glyphmap.Name, " ", whitespace.Name})
	if err != nil {
		t.Fatalf("BuildPipeline failed: %v", err)
	}

	text, err := p.Process(context.Background(), "  Äîãîâîð   ¹1  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Договор ¹1" {
		t.Errorf("got %q", text)
	}
}

func TestDefaultSteps_InlineParameters(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	tests := []struct {
		spec string
		in   string
		want string
	}{
		{spec: glyphmap.Name + ":min_word=4", in: "Äîã", want: "Äîã"},
		{spec: whitespace.Name + ":max_blank_lines=0", in: "a\n\nb", want: "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			p, err := r.BuildPipeline([]string{tt.spec})
			if err != nil {
				t.Fatalf("BuildPipeline failed: %v", err)
			}
			got, err := p.Process(context.Background(), tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetIntFromConfig(t *testing.T) {
	cfg := map[string]any{
		"int":    7,
		"int64":  int64(8),
		"float":  float64(9),
		"string": "10",
		"junk":   "ten",
		"bool":   true,
	}

	want := map[string]int{
		"int": 7, "int64": 8, "float": 9, "string": 10,
		"junk": 0, "bool": 0, "missing": 0,
	}
	for key, expected := range want {
		if got := getIntFromConfig(cfg, key); got != expected {
			t.Errorf("%s: got %d, want %d", key, got, expected)
		}
	}
	if got := getIntFromConfig(nil, "int"); got != 0 {
		t.Errorf("nil config: got %d", got)
	}
}
