package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/germanamz/chainy/pkg/providers/provider"
	"github.com/germanamz/chainy/pkg/providers/watsonx"
)

func TestBuildClient_Watsonx(t *testing.T) {
	cfg := ProviderConfig{
		Name:    "granite",
		Kind:    "watsonx",
		BaseURL: "https://us-south.ml.cloud.ibm.com",
		APIKey:  "test-key",
		Model:   "ibm/granite-13b-instruct-v2",
	}

	client, err := buildClient(cfg)
	require.NoError(t, err)
	assert.IsType(t, &watsonx.Client{}, client)
}

func TestBuildClient_WatsonxMissingBaseURL(t *testing.T) {
	cfg := ProviderConfig{Name: "granite", Kind: "watsonx", Model: "m1"}

	_, err := buildClient(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestBuildClient_OpenAI(t *testing.T) {
	cfg := ProviderConfig{Name: "gpt", Kind: "openai", APIKey: "sk-test", Model: "gpt-4o-mini"}

	client, err := buildClient(cfg)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestBuildClient_UnknownKind(t *testing.T) {
	_, err := buildClient(ProviderConfig{Name: "x", Kind: "nope", Model: "m1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorContains(t, err, "unknown provider kind")
}

func TestBuildClient_RateLimited(t *testing.T) {
	cfg := ProviderConfig{
		Name:      "granite",
		Kind:      "watsonx",
		BaseURL:   "https://us-south.ml.cloud.ibm.com",
		Model:     "ibm/granite-13b-instruct-v2",
		RateLimit: RateLimitConfig{InputTPM: 1000, RPM: 10, BaseDelay: "500ms"},
	}

	client, err := buildClient(cfg)
	require.NoError(t, err)
	assert.IsType(t, &provider.RateLimited{}, client)
}

func TestBuildClient_InvalidBaseDelay(t *testing.T) {
	cfg := ProviderConfig{
		Name:      "granite",
		Kind:      "watsonx",
		BaseURL:   "https://us-south.ml.cloud.ibm.com",
		Model:     "ibm/granite-13b-instruct-v2",
		RateLimit: RateLimitConfig{BaseDelay: "not-a-duration"},
	}

	_, err := buildClient(cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfig)
	assert.ErrorContains(t, err, "base_delay")
}

func TestRegisterProvider_CustomKind(t *testing.T) {
	RegisterProvider("custom-llm", func(_ ProviderConfig) (provider.TextGenerator, error) {
		return &mockGenerator{reply: "custom"}, nil
	})

	client, err := buildClient(ProviderConfig{Name: "c", Kind: "custom-llm", Model: "m1"})
	require.NoError(t, err)
	assert.IsType(t, &mockGenerator{}, client)
}
