package retrieval_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/germanamz/chainy/pkg/prompt"
	"github.com/germanamz/chainy/pkg/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex returns canned passages and records the last query.
type fakeIndex struct {
	passages []string
	err      error
	lastQ    string
	lastK    int
}

func (f *fakeIndex) Retrieve(_ context.Context, query string, k int) ([]string, error) {
	f.lastQ = query
	f.lastK = k

	return f.passages, f.err
}

// capturingGenerator echoes a fixed answer and records the prompt it saw.
type capturingGenerator struct {
	answer string
	prompt string
	calls  int
}

func (g *capturingGenerator) Generate(_ context.Context, p string, _ []string) (string, error) {
	g.calls++
	g.prompt = p

	return g.answer, nil
}

func TestQAChain_Run(t *testing.T) {
	index := &fakeIndex{passages: []string{"Tokyo is the capital of Japan.", "Japan is in Asia."}}
	gen := &capturingGenerator{answer: "Tokyo"}
	qa := retrieval.NewQAChain(index, gen)

	got, err := qa.Run(context.Background(), "what is the capital of Japan?")
	require.NoError(t, err)

	assert.Equal(t, "Tokyo", got)
	assert.Equal(t, "what is the capital of Japan?", index.lastQ)
	assert.Equal(t, retrieval.DefaultK, index.lastK)

	assert.Contains(t, gen.prompt, "Tokyo is the capital of Japan.\n\nJapan is in Asia.")
	assert.Contains(t, gen.prompt, "Question: what is the capital of Japan?")
}

func TestQAChain_CustomK(t *testing.T) {
	index := &fakeIndex{passages: []string{"p"}}
	qa := retrieval.NewQAChain(index, &capturingGenerator{answer: "a"})
	qa.K = 7

	_, err := qa.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.Equal(t, 7, index.lastK)
}

func TestQAChain_NoContext(t *testing.T) {
	index := &fakeIndex{passages: nil}
	gen := &capturingGenerator{answer: "never"}
	qa := retrieval.NewQAChain(index, gen)

	_, err := qa.Run(context.Background(), "q")

	assert.ErrorIs(t, err, retrieval.ErrNoContext)
	assert.Equal(t, 0, gen.calls, "model must not be called without context")
}

func TestQAChain_IndexError(t *testing.T) {
	cause := errors.New("index offline")
	qa := retrieval.NewQAChain(&fakeIndex{err: cause}, &capturingGenerator{})

	_, err := qa.Run(context.Background(), "q")

	assert.ErrorIs(t, err, cause)
}

func TestQAChain_CustomTemplate(t *testing.T) {
	tmpl := prompt.MustNew("{context}|{question}", "context", "question")
	index := &fakeIndex{passages: []string{"a", "b"}}
	gen := &capturingGenerator{answer: "ok"}
	qa := retrieval.NewQAChainTemplate(index, gen, tmpl)

	_, err := qa.Run(context.Background(), "q")
	require.NoError(t, err)

	parts := strings.Split(gen.prompt, "|")
	require.Len(t, parts, 2)
	assert.Equal(t, "a\n\nb", parts[0])
	assert.Equal(t, "q", parts[1])
}
