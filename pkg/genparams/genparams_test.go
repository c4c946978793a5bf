package genparams

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParams_ZeroValue(t *testing.T) {
	var p Params

	assert.Empty(t, p.Map())
}

func TestParams_Map(t *testing.T) {
	p := Params{
		DecodingMethod: DecodingGreedy,
		MinNewTokens:   1,
		MaxNewTokens:   100,
		Temperature:    0.5,
		TopK:           50,
		TopP:           1.0,
	}

	m := p.Map()

	assert.Equal(t, DecodingGreedy, m["decoding_method"])
	assert.Equal(t, 1, m["min_new_tokens"])
	assert.Equal(t, 100, m["max_new_tokens"])
	assert.Equal(t, 0.5, m["temperature"])
	assert.Equal(t, 50, m["top_k"])
	assert.Equal(t, 1.0, m["top_p"])
	assert.NotContains(t, m, "random_seed")
}

func TestParams_Map_ReturnsCopy(t *testing.T) {
	p := Params{MaxNewTokens: 100}

	m := p.Map()
	m["max_new_tokens"] = 1
	m["injected"] = true

	fresh := p.Map()
	assert.Equal(t, 100, fresh["max_new_tokens"])
	assert.NotContains(t, fresh, "injected")
}
