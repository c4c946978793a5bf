// Package watsonx provides a provider.TextGenerator for the IBM watsonx.ai
// text generation API.
package watsonx

import (
	"context"
	"fmt"
	"net/http"

	"github.com/germanamz/chainy/pkg/genparams"
	"github.com/germanamz/chainy/pkg/providers/provider"
	"github.com/germanamz/chainy/pkg/providers/usage"
)

const (
	generationPath = "/ml/v1/text/generation"

	// apiVersion is the date-versioned API revision sent with every request.
	apiVersion = "2024-05-31"
)

var _ provider.TextGenerator = (*Client)(nil)

// Client implements provider.TextGenerator for the watsonx.ai generation API.
type Client struct {
	provider.Client
}

// New creates a Client configured for a watsonx.ai deployment.
// The baseURL is the service endpoint (no trailing slash), e.g.
// "https://us-south.ml.cloud.ibm.com". A nil httpClient falls back to
// http.DefaultClient.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	c := &Client{
		Client: provider.NewClient(baseURL, provider.Auth{Key: apiKey}, httpClient),
	}

	return c
}

// GenerateText sends a generation request and returns the generated text.
func (c *Client) GenerateText(ctx context.Context, req provider.Request) (provider.Response, error) {
	payload := apiRequest{
		ModelID:    req.Model,
		Input:      req.Input,
		ProjectID:  req.ProjectID,
		Parameters: buildParameters(req.Params),
	}

	path := generationPath + "?version=" + apiVersion

	var resp apiResponse
	if err := c.PostJSON(ctx, path, payload, &resp); err != nil {
		return provider.Response{}, fmt.Errorf("watsonx: %w", err)
	}

	if len(resp.Results) == 0 {
		return provider.Response{}, fmt.Errorf("watsonx: empty results in response")
	}

	res := resp.Results[0]

	c.Usage.Add(usage.TokenCount{
		InputTokens:  res.InputTokenCount,
		OutputTokens: res.GeneratedTokenCount,
	})

	return provider.Response{
		Text:         res.GeneratedText,
		StopReason:   res.StopReason,
		InputTokens:  res.InputTokenCount,
		OutputTokens: res.GeneratedTokenCount,
	}, nil
}

// --- request types ---

type apiRequest struct {
	ModelID    string         `json:"model_id"`
	Input      string         `json:"input"`
	Parameters *apiParameters `json:"parameters,omitempty"`
	ProjectID  string         `json:"project_id,omitempty"`
}

type apiParameters struct {
	DecodingMethod string   `json:"decoding_method,omitempty"`
	MinNewTokens   int      `json:"min_new_tokens,omitempty"`
	MaxNewTokens   int      `json:"max_new_tokens,omitempty"`
	RandomSeed     int      `json:"random_seed,omitempty"`
	Temperature    *float64 `json:"temperature,omitempty"`
	TopK           int      `json:"top_k,omitempty"`
	TopP           *float64 `json:"top_p,omitempty"`
}

// --- response types ---

type apiResponse struct {
	ModelID string      `json:"model_id"`
	Results []apiResult `json:"results"`
}

type apiResult struct {
	GeneratedText       string `json:"generated_text"`
	GeneratedTokenCount int    `json:"generated_token_count"`
	InputTokenCount     int    `json:"input_token_count"`
	StopReason          string `json:"stop_reason"`
}

// --- conversion helpers ---

func buildParameters(p genparams.Params) *apiParameters {
	if len(p.Map()) == 0 {
		return nil
	}

	params := &apiParameters{
		DecodingMethod: p.DecodingMethod,
		MinNewTokens:   p.MinNewTokens,
		MaxNewTokens:   p.MaxNewTokens,
		RandomSeed:     p.RandomSeed,
		TopK:           p.TopK,
	}

	if p.Temperature > 0 {
		t := p.Temperature
		params.Temperature = &t
	}

	if p.TopP > 0 {
		tp := p.TopP
		params.TopP = &tp
	}

	return params
}
