package modeladapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/chainy/pkg/genparams"
	"github.com/germanamz/chainy/pkg/providers/provider"
)

// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
var ErrEmptyPrompt = errors.New("modeladapter: prompt must not be empty")

// ServiceError wraps a failure from the remote model service. The cause is
// preserved verbatim; the adapter never retries.
type ServiceError struct {
	Model string // Model identifier the call was made with.
	Err   error  // Underlying transport or API error.
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("model %q: %v", e.Model, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Generator is the uniform "prompt in, text out" contract consumed by chains.
// *Adapter implements it; tests substitute stubs.
type Generator interface {
	Generate(ctx context.Context, prompt string, stop []string) (string, error)
}

// Adapter binds a remote text generation client to a fixed model, project and
// parameter set. Construction performs no network I/O; every Generate call
// makes exactly one round-trip through the client. An Adapter is immutable
// after construction and safe for concurrent use.
type Adapter struct {
	client    provider.TextGenerator
	modelID   string
	projectID string
	params    genparams.Params
}

var _ Generator = (*Adapter)(nil)

// New creates an Adapter for the given client and model identifier.
// projectID may be empty for services without a project/tenant dimension.
func New(client provider.TextGenerator, modelID, projectID string, params genparams.Params) *Adapter {
	return &Adapter{
		client:    client,
		modelID:   modelID,
		projectID: projectID,
		params:    params,
	}
}

// ModelID returns the model identifier the adapter generates with.
func (a *Adapter) ModelID() string { return a.modelID }

// ProjectID returns the project identifier sent with every request.
func (a *Adapter) ProjectID() string { return a.projectID }

// Params returns a copy of the adapter's generation parameters.
func (a *Adapter) Params() genparams.Params { return a.params }

// Generate sends prompt to the remote model and returns the generated text.
// When stop markers are supplied the text is truncated at the earliest
// occurrence of any marker; text without a marker is returned unmodified.
// A transport or API failure is wrapped in *ServiceError and propagated —
// there is no retry and no caching.
func (a *Adapter) Generate(ctx context.Context, prompt string, stop []string) (string, error) {
	if prompt == "" {
		return "", ErrEmptyPrompt
	}

	resp, err := a.client.GenerateText(ctx, provider.Request{
		Model:     a.modelID,
		ProjectID: a.projectID,
		Input:     prompt,
		Params:    a.params,
	})
	if err != nil {
		return "", &ServiceError{Model: a.modelID, Err: err}
	}

	return truncateAtStop(resp.Text, stop), nil
}

// truncateAtStop cuts text at the earliest occurrence of any stop marker.
// Empty markers are skipped; no match leaves the text unchanged.
func truncateAtStop(text string, stop []string) string {
	cut := -1
	for _, marker := range stop {
		if marker == "" {
			continue
		}
		if i := strings.Index(text, marker); i >= 0 && (cut < 0 || i < cut) {
			cut = i
		}
	}

	if cut < 0 {
		return text
	}

	return text[:cut]
}
