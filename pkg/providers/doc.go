// Package providers defines the interface and types for hosted text
// generation providers.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/chainy/pkg/providers/provider] — TextGenerator interface, request/response types, embeddable Client base struct with HTTP helpers, auth, and custom headers
//   - [github.com/germanamz/chainy/pkg/providers/usage] — thread-safe token usage tracker
//   - [github.com/germanamz/chainy/pkg/providers/watsonx] — watsonx.ai text generation client
//   - [github.com/germanamz/chainy/pkg/providers/openai] — OpenAI chat completions client
//
// This package contains no provider-specific code — concrete clients live in
// separate packages that import provider.
package providers
