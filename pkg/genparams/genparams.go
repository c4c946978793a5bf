// Package genparams holds provider-agnostic text generation parameters.
package genparams

// Decoding methods accepted by hosted generation endpoints.
const (
	DecodingGreedy = "greedy"
	DecodingSample = "sample"
)

// Params holds decoding settings for a generation request.
// The zero value is valid; zero fields mean "use service default".
// Params is passed and stored by value, so an adapter's copy can never be
// mutated through an accessor. Values are not validated client-side; the
// remote service is the authority on acceptable ranges.
type Params struct {
	DecodingMethod string
	MinNewTokens   int
	MaxNewTokens   int
	RandomSeed     int
	Temperature    float64
	TopK           int
	TopP           float64
}

// Map returns the parameters as a fresh name → value map, omitting zero
// fields. Intended for introspection and logging; mutating the returned map
// has no effect on the Params it came from.
func (p Params) Map() map[string]any {
	m := make(map[string]any)

	if p.DecodingMethod != "" {
		m["decoding_method"] = p.DecodingMethod
	}
	if p.MinNewTokens > 0 {
		m["min_new_tokens"] = p.MinNewTokens
	}
	if p.MaxNewTokens > 0 {
		m["max_new_tokens"] = p.MaxNewTokens
	}
	if p.RandomSeed > 0 {
		m["random_seed"] = p.RandomSeed
	}
	if p.Temperature > 0 {
		m["temperature"] = p.Temperature
	}
	if p.TopK > 0 {
		m["top_k"] = p.TopK
	}
	if p.TopP > 0 {
		m["top_p"] = p.TopP
	}

	return m
}
