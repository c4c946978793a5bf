package chain

import (
	"context"
	"fmt"

	"github.com/germanamz/chainy/pkg/modeladapter"
	"github.com/germanamz/chainy/pkg/prompt"
)

// Step binds one model adapter to one prompt template.
type Step struct {
	// Stop markers passed to the generator on every run. Optional.
	Stop []string

	gen  modeladapter.Generator
	tmpl *prompt.Template
}

// NewStep creates a Step from a generator and a template.
func NewStep(gen modeladapter.Generator, tmpl *prompt.Template) *Step {
	return &Step{gen: gen, tmpl: tmpl}
}

// Template returns the step's prompt template.
func (s *Step) Template() *prompt.Template { return s.tmpl }

// Run renders the template with values, sends the rendered prompt to the
// generator, and returns the generated text. Render and generation errors
// propagate unchanged apart from a package prefix.
func (s *Step) Run(ctx context.Context, values map[string]string) (string, error) {
	rendered, err := s.tmpl.Render(values)
	if err != nil {
		return "", fmt.Errorf("chain: render: %w", err)
	}

	out, err := s.gen.Generate(ctx, rendered, s.Stop)
	if err != nil {
		return "", fmt.Errorf("chain: generate: %w", err)
	}

	return out, nil
}

// RunText runs the step with a bare text input. The template must declare
// exactly one variable; otherwise RunText fails with ErrTextInput before any
// network call.
func (s *Step) RunText(ctx context.Context, input string) (string, error) {
	vars := s.tmpl.Variables()
	if len(vars) != 1 {
		return "", fmt.Errorf("%w (got %d variables)", ErrTextInput, len(vars))
	}

	return s.Run(ctx, map[string]string{vars[0]: input})
}
