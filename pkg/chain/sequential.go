package chain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// TraceEntry records the output of one sequential step.
type TraceEntry struct {
	Step   int    // Zero-based step index.
	Output string // The step's generated text.
}

// Sequential pipes the text output of each step into the sole input variable
// of the next and returns the final step's output.
type Sequential struct {
	// Verbose logs each step's output at info level. The log output never
	// affects the returned value.
	Verbose bool

	steps []*Step
}

// NewSequential builds a sequential chain from two or more steps. Every step
// after the first must declare exactly one input variable; a violation fails
// here, before any network call is made.
func NewSequential(steps ...*Step) (*Sequential, error) {
	if len(steps) < 2 {
		return nil, fmt.Errorf("%w (got %d)", ErrTooFewSteps, len(steps))
	}

	for i, s := range steps[1:] {
		if n := len(s.Template().Variables()); n != 1 {
			return nil, fmt.Errorf("%w: step %d declares %d", ErrNotComposable, i+1, n)
		}
	}

	return &Sequential{steps: steps}, nil
}

// Len returns the number of steps in the chain.
func (s *Sequential) Len() int { return len(s.steps) }

// Run executes the chain: the first step receives input as its sole variable
// value, each later step receives the prior step's output. The first failing
// step aborts the run and its error propagates unchanged.
func (s *Sequential) Run(ctx context.Context, input string) (string, error) {
	out, _, err := s.run(ctx, input, false)
	return out, err
}

// RunTrace is Run plus an ordered trace of every step's output. The trace is
// for observability only; the returned text is identical to Run's.
func (s *Sequential) RunTrace(ctx context.Context, input string) (string, []TraceEntry, error) {
	return s.run(ctx, input, true)
}

func (s *Sequential) run(ctx context.Context, input string, traced bool) (string, []TraceEntry, error) {
	var trace []TraceEntry
	if traced {
		trace = make([]TraceEntry, 0, len(s.steps))
	}

	runID := ""
	if s.Verbose {
		runID = uuid.NewString()
		slog.Info("sequential chain start", "run_id", runID, "steps", len(s.steps))
	}

	current := input
	for i, step := range s.steps {
		out, err := step.RunText(ctx, current)
		if err != nil {
			return "", nil, fmt.Errorf("chain: step %d: %w", i, err)
		}

		if traced {
			trace = append(trace, TraceEntry{Step: i, Output: out})
		}
		if s.Verbose {
			slog.Info("sequential chain step", "run_id", runID, "step", i, "output", out)
		}

		current = out
	}

	return current, trace, nil
}
