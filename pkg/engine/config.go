package engine

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/germanamz/chainy/pkg/genparams"
)

// ErrConfig is wrapped by every configuration failure. Configuration errors
// are fatal: they surface before any chain executes.
var ErrConfig = errors.New("engine: invalid configuration")

// Environment variables read by FromEnv.
const (
	EnvURL       = "WATSONX_URL"
	EnvAPIKey    = "WATSONX_API_KEY" //nolint:gosec // variable name, not a credential
	EnvProjectID = "WATSONX_PROJECT_ID"
	EnvModel     = "WATSONX_MODEL"
)

// DefaultModel is used by FromEnv when EnvModel is unset.
const DefaultModel = "google/flan-ul2"

// Config is the top-level engine configuration.
type Config struct {
	Providers       []ProviderConfig `yaml:"providers"`
	DefaultProvider string           `yaml:"default_provider"`
	Retrieval       RetrievalConfig  `yaml:"retrieval"`
}

// ProviderConfig describes one configured model adapter.
type ProviderConfig struct {
	Name      string          `yaml:"name"`
	Kind      string          `yaml:"kind"`
	BaseURL   string          `yaml:"base_url"`
	APIKey    string          `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model     string          `yaml:"model"`
	ProjectID string          `yaml:"project_id"`
	Params    ParamsConfig    `yaml:"params"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// RateLimitConfig controls per-provider rate limiting.
type RateLimitConfig struct {
	InputTPM   int    `yaml:"input_tpm"`   // Input tokens per minute (0 = no limit).
	OutputTPM  int    `yaml:"output_tpm"`  // Output tokens per minute (0 = no limit).
	RPM        int    `yaml:"rpm"`         // Requests per minute (0 = no limit).
	MaxRetries int    `yaml:"max_retries"` // Max retries on 429 (default 3).
	BaseDelay  string `yaml:"base_delay"`  // Initial backoff delay as a duration string (e.g. "1s", "500ms").
}

// ParamsConfig holds generation parameters in YAML form.
type ParamsConfig struct {
	DecodingMethod string  `yaml:"decoding_method"`
	MinNewTokens   int     `yaml:"min_new_tokens"`
	MaxNewTokens   int     `yaml:"max_new_tokens"`
	RandomSeed     int     `yaml:"random_seed"`
	Temperature    float64 `yaml:"temperature"`
	TopK           int     `yaml:"top_k"`
	TopP           float64 `yaml:"top_p"`
}

// Params converts the YAML form to genparams.Params.
func (p ParamsConfig) Params() genparams.Params {
	return genparams.Params{
		DecodingMethod: p.DecodingMethod,
		MinNewTokens:   p.MinNewTokens,
		MaxNewTokens:   p.MaxNewTokens,
		RandomSeed:     p.RandomSeed,
		Temperature:    p.Temperature,
		TopK:           p.TopK,
		TopP:           p.TopP,
	}
}

// RetrievalConfig holds vector index settings for document-grounded QA.
type RetrievalConfig struct {
	URL          string `yaml:"url"`
	Class        string `yaml:"class"`
	ContentField string `yaml:"content_field"`
	K            int    `yaml:"k"`
}

// LoadConfig reads a YAML file and returns a Config.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing. This allows API keys and other secrets to be kept in
// environment variables (e.g. loaded from a .env file) rather than committed
// in the config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return Config{}, fmt.Errorf("engine: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("engine: parse config: %w", err)
	}

	return cfg, nil
}

// FromEnv builds a single-provider watsonx configuration from the process
// environment. Every missing required variable is reported; any absence is a
// fatal configuration error.
func FromEnv() (Config, error) {
	var missing []string
	for _, v := range []string{EnvURL, EnvAPIKey, EnvProjectID} {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: missing environment variables %v", ErrConfig, missing)
	}

	model := os.Getenv(EnvModel)
	if model == "" {
		model = DefaultModel
	}

	return Config{
		Providers: []ProviderConfig{{
			Name:      "watsonx",
			Kind:      "watsonx",
			BaseURL:   os.Getenv(EnvURL),
			APIKey:    os.Getenv(EnvAPIKey),
			Model:     model,
			ProjectID: os.Getenv(EnvProjectID),
		}},
		DefaultProvider: "watsonx",
	}, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if len(c.Providers) == 0 {
		return fmt.Errorf("%w: at least one provider is required", ErrConfig)
	}

	names := make(map[string]struct{}, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("%w: provider name is required", ErrConfig)
		}
		if p.Kind == "" {
			return fmt.Errorf("%w: provider %q: kind is required", ErrConfig, p.Name)
		}
		if p.Model == "" {
			return fmt.Errorf("%w: provider %q: model is required", ErrConfig, p.Name)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("%w: duplicate provider name %q", ErrConfig, p.Name)
		}
		names[p.Name] = struct{}{}
	}

	if c.DefaultProvider != "" {
		if _, ok := names[c.DefaultProvider]; !ok {
			return fmt.Errorf("%w: default provider %q is not defined", ErrConfig, c.DefaultProvider)
		}
	}

	return nil
}
