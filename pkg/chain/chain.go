// Package chain composes prompt templates and model adapters into runnable
// pipelines.
//
// A [Step] binds one template to one generator: render, call, return text.
// A [Sequential] threads the output text of each step into the sole input
// variable of the next. Chains are immutable after construction, stateless
// across runs, and safe for concurrent use. Failures are never retried; the
// first error aborts the run and propagates unchanged.
package chain

import "errors"

// Invocation failures. All are raised before any network call is made.
var (
	// ErrTextInput is returned when bare text is given to a step whose
	// template declares more or fewer than one variable.
	ErrTextInput = errors.New("chain: bare text input requires a single-variable template")

	// ErrTooFewSteps is returned when a sequential chain is built from fewer
	// than two steps.
	ErrTooFewSteps = errors.New("chain: sequential chain requires at least two steps")

	// ErrNotComposable is returned when a non-initial sequential step does
	// not declare exactly one input variable.
	ErrNotComposable = errors.New("chain: non-initial steps must declare exactly one input variable")
)
