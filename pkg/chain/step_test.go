package chain_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/germanamz/chainy/pkg/chain"
	"github.com/germanamz/chainy/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoGenerator answers with a fixed mapping looked up by substring, falling
// back to echoing the prompt. It records every call.
type echoGenerator struct {
	answers map[string]string
	err     error
	calls   int
	prompts []string
	stops   [][]string
}

func (g *echoGenerator) Generate(_ context.Context, p string, stop []string) (string, error) {
	g.calls++
	g.prompts = append(g.prompts, p)
	g.stops = append(g.stops, stop)

	if g.err != nil {
		return "", g.err
	}

	for needle, answer := range g.answers {
		if needle != "" && strings.Contains(p, needle) {
			return answer, nil
		}
	}

	return p, nil
}

func TestStep_RunText(t *testing.T) {
	gen := &echoGenerator{answers: map[string]string{"Japan": "tokyo"}}
	tmpl := prompt.MustNew("where is the capital of {country}?", "country")
	step := chain.NewStep(gen, tmpl)

	got, err := step.RunText(context.Background(), "Japan")
	require.NoError(t, err)

	assert.Equal(t, "tokyo", got)
	assert.Equal(t, []string{"where is the capital of Japan?"}, gen.prompts)
}

func TestStep_Run_Mapping(t *testing.T) {
	gen := &echoGenerator{}
	tmpl := prompt.MustNew("Context: {context}\nQuestion: {question}", "context", "question")
	step := chain.NewStep(gen, tmpl)

	got, err := step.Run(context.Background(), map[string]string{
		"context":  "c",
		"question": "q",
	})
	require.NoError(t, err)

	assert.Equal(t, "Context: c\nQuestion: q", got)
}

func TestStep_RunText_WrongArity(t *testing.T) {
	gen := &echoGenerator{}
	tmpl := prompt.MustNew("{a} {b}", "a", "b")
	step := chain.NewStep(gen, tmpl)

	_, err := step.RunText(context.Background(), "input")

	assert.ErrorIs(t, err, chain.ErrTextInput)
	assert.Equal(t, 0, gen.calls, "no network call on invalid input")
}

func TestStep_Run_RenderError(t *testing.T) {
	gen := &echoGenerator{}
	step := chain.NewStep(gen, prompt.MustNew("{a}", "a"))

	_, err := step.Run(context.Background(), map[string]string{})

	assert.ErrorIs(t, err, prompt.ErrMissingVariable)
	assert.Equal(t, 0, gen.calls)
}

func TestStep_Run_GeneratorError(t *testing.T) {
	cause := errors.New("service down")
	step := chain.NewStep(&echoGenerator{err: cause}, prompt.MustNew("{a}", "a"))

	_, err := step.Run(context.Background(), map[string]string{"a": "1"})

	assert.ErrorIs(t, err, cause)
}

func TestStep_StopMarkersForwarded(t *testing.T) {
	gen := &echoGenerator{}
	step := chain.NewStep(gen, prompt.MustNew("{a}", "a"))
	step.Stop = []string{"\n"}

	_, err := step.RunText(context.Background(), "x")
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"\n"}}, gen.stops)
}
