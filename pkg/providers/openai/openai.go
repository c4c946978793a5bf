// Package openai provides a provider.TextGenerator backed by the OpenAI Chat
// Completions API via the go-openai SDK.
package openai

import (
	"context"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/germanamz/chainy/pkg/providers/provider"
	"github.com/germanamz/chainy/pkg/providers/usage"
)

var _ provider.TextGenerator = (*Client)(nil)

// Client implements provider.TextGenerator for OpenAI-compatible chat APIs.
type Client struct {
	api *goopenai.Client

	// SystemPrompt is prepended as a system message when non-empty.
	SystemPrompt string

	// Usage tracks token consumption across calls.
	Usage usage.Tracker
}

// New creates a Client for the OpenAI API. A non-empty baseURL overrides the
// default endpoint, which allows pointing the client at OpenAI-compatible
// gateways.
func New(baseURL, apiKey string) *Client {
	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{api: goopenai.NewClientWithConfig(cfg)}
}

// GenerateText sends the prompt as a single-turn chat completion and returns
// the assistant's reply. Parameters without a chat-completions equivalent
// (decoding method, min new tokens, top-k) are not sent.
func (c *Client) GenerateText(ctx context.Context, req provider.Request) (provider.Response, error) {
	var msgs []goopenai.ChatCompletionMessage
	if c.SystemPrompt != "" {
		msgs = append(msgs, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: c.SystemPrompt,
		})
	}
	msgs = append(msgs, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Input,
	})

	apiReq := goopenai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: msgs,
	}

	p := req.Params
	if p.Temperature > 0 {
		apiReq.Temperature = float32(p.Temperature)
	}
	if p.MaxNewTokens > 0 {
		apiReq.MaxTokens = p.MaxNewTokens
	}
	if p.TopP > 0 {
		apiReq.TopP = float32(p.TopP)
	}
	if p.RandomSeed > 0 {
		seed := p.RandomSeed
		apiReq.Seed = &seed
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return provider.Response{}, fmt.Errorf("openai: %w", err)
	}

	if len(resp.Choices) == 0 {
		return provider.Response{}, fmt.Errorf("openai: empty choices in response")
	}

	c.Usage.Add(usage.TokenCount{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	})

	choice := resp.Choices[0]

	return provider.Response{
		Text:         choice.Message.Content,
		StopReason:   string(choice.FinishReason),
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}
