package modeladapter_test

import (
	"context"
	"errors"
	"testing"

	"github.com/germanamz/chainy/pkg/genparams"
	"github.com/germanamz/chainy/pkg/modeladapter"
	"github.com/germanamz/chainy/pkg/providers/provider"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records requests and replies with a fixed text.
type fakeClient struct {
	text  string
	err   error
	calls int
	last  provider.Request
}

func (f *fakeClient) GenerateText(_ context.Context, req provider.Request) (provider.Response, error) {
	f.calls++
	f.last = req

	if f.err != nil {
		return provider.Response{}, f.err
	}

	return provider.Response{Text: f.text}, nil
}

func TestGenerate(t *testing.T) {
	client := &fakeClient{text: "tokyo"}
	params := genparams.Params{DecodingMethod: genparams.DecodingGreedy, MaxNewTokens: 100}
	a := modeladapter.New(client, "google/flan-ul2", "proj-1", params)

	got, err := a.Generate(context.Background(), "where is the capital of Japan?", nil)
	require.NoError(t, err)

	assert.Equal(t, "tokyo", got)
	assert.Equal(t, 1, client.calls)
	assert.Equal(t, "google/flan-ul2", client.last.Model)
	assert.Equal(t, "proj-1", client.last.ProjectID)
	assert.Equal(t, "where is the capital of Japan?", client.last.Input)
	assert.Equal(t, params, client.last.Params)
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	client := &fakeClient{text: "never"}
	a := modeladapter.New(client, "m", "", genparams.Params{})

	_, err := a.Generate(context.Background(), "", nil)

	assert.ErrorIs(t, err, modeladapter.ErrEmptyPrompt)
	assert.Equal(t, 0, client.calls, "no network call on invalid input")
}

func TestGenerate_StopTruncation(t *testing.T) {
	client := &fakeClient{text: "abcXYZdef"}
	a := modeladapter.New(client, "m", "", genparams.Params{})

	got, err := a.Generate(context.Background(), "p", []string{"XYZ"})
	require.NoError(t, err)

	assert.Equal(t, "abc", got)
}

func TestGenerate_StopEarliestWins(t *testing.T) {
	client := &fakeClient{text: "one two three four"}
	a := modeladapter.New(client, "m", "", genparams.Params{})

	got, err := a.Generate(context.Background(), "p", []string{"three", "two"})
	require.NoError(t, err)

	assert.Equal(t, "one ", got)
}

func TestGenerate_StopNoMatch(t *testing.T) {
	client := &fakeClient{text: "untouched output"}
	a := modeladapter.New(client, "m", "", genparams.Params{})

	got, err := a.Generate(context.Background(), "p", []string{"ZZZ", ""})
	require.NoError(t, err)

	assert.Equal(t, "untouched output", got)
}

func TestGenerate_ServiceError(t *testing.T) {
	cause := errors.New("connection refused")
	client := &fakeClient{err: cause}
	a := modeladapter.New(client, "google/flan-ul2", "", genparams.Params{})

	_, err := a.Generate(context.Background(), "p", nil)
	require.Error(t, err)

	var svcErr *modeladapter.ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "google/flan-ul2", svcErr.Model)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, client.calls, "exactly one call, no retry")
}

func TestAdapter_Accessors(t *testing.T) {
	params := genparams.Params{Temperature: 0.5}
	a := modeladapter.New(&fakeClient{}, "model-x", "proj-9", params)

	assert.Equal(t, "model-x", a.ModelID())
	assert.Equal(t, "proj-9", a.ProjectID())

	got := a.Params()
	got.Temperature = 0.9 // mutating the copy must not leak back

	assert.Equal(t, 0.5, a.Params().Temperature)
}
