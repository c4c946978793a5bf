// Package modeladapter wraps a remote text generation client behind a uniform
// "prompt in, text out" contract.
//
// It contains:
//   - [Generator] — the interface chains consume
//   - [Adapter] — an immutable binding of a provider client to one model,
//     project and generation parameter set, with optional stop-marker
//     truncation of the generated text
//
// This package contains no provider-specific code — concrete clients live
// under pkg/providers and are passed in at construction.
package modeladapter
