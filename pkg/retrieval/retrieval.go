// Package retrieval provides document-grounded question answering over an
// external vector index.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/germanamz/chainy/pkg/chain"
	"github.com/germanamz/chainy/pkg/modeladapter"
	"github.com/germanamz/chainy/pkg/prompt"
)

// ErrNoContext is returned when the index yields zero passages for a
// question. Failing loudly was chosen over answering from an empty context,
// so a misconfigured or unpopulated index cannot masquerade as model output.
var ErrNoContext = errors.New("retrieval: no passages retrieved for question")

// DefaultK is the number of passages retrieved when K is unset.
const DefaultK = 4

// DefaultTemplate is the stuffing template used when none is supplied.
var DefaultTemplate = prompt.MustNew(
	"Answer the question using only the context below.\n\nContext:\n{context}\n\nQuestion: {question}\nAnswer:",
	"context", "question",
)

// Index is the external vector index boundary: nearest-neighbor retrieval of
// passage texts for a query.
type Index interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// QAChain answers questions by stuffing retrieved passages into a
// two-variable template ({context}, {question}) and running it as a single
// chain step.
type QAChain struct {
	// K is the number of passages to retrieve. Zero means DefaultK.
	K int

	index Index
	step  *chain.Step
}

// NewQAChain creates a QAChain over the given index and generator, using
// DefaultTemplate.
func NewQAChain(index Index, gen modeladapter.Generator) *QAChain {
	return NewQAChainTemplate(index, gen, DefaultTemplate)
}

// NewQAChainTemplate is NewQAChain with a custom stuffing template. The
// template must declare the variables "context" and "question".
func NewQAChainTemplate(index Index, gen modeladapter.Generator, tmpl *prompt.Template) *QAChain {
	return &QAChain{
		index: index,
		step:  chain.NewStep(gen, tmpl),
	}
}

// Run retrieves the top-k passages for question, joins them into a single
// context block, and generates an answer. Zero retrieved passages fail with
// ErrNoContext. Retrieval and generation errors propagate unchanged.
func (q *QAChain) Run(ctx context.Context, question string) (string, error) {
	k := q.K
	if k <= 0 {
		k = DefaultK
	}

	passages, err := q.index.Retrieve(ctx, question, k)
	if err != nil {
		return "", fmt.Errorf("retrieval: %w", err)
	}

	if len(passages) == 0 {
		return "", ErrNoContext
	}

	return q.step.Run(ctx, map[string]string{
		"context":  strings.Join(passages, "\n\n"),
		"question": question,
	})
}
