package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/germanamz/chainy/pkg/providers/openai"
	"github.com/germanamz/chainy/pkg/providers/provider"
	"github.com/germanamz/chainy/pkg/providers/watsonx"
)

// ProviderFactory creates a remote model client from a ProviderConfig.
type ProviderFactory func(cfg ProviderConfig) (provider.TextGenerator, error)

var (
	factoryMu   sync.RWMutex
	factories   = map[string]ProviderFactory{}
	defaultsReg sync.Once
)

func ensureDefaults() {
	defaultsReg.Do(func() {
		factories["watsonx"] = newWatsonx
		factories["openai"] = newOpenAI
	})
}

// RegisterProvider registers a custom provider factory under the given kind.
// It can be called before New to extend the engine with additional providers.
func RegisterProvider(kind string, factory ProviderFactory) {
	ensureDefaults()

	factoryMu.Lock()
	defer factoryMu.Unlock()

	factories[kind] = factory
}

// getFactory returns the factory for the given kind.
func getFactory(kind string) (ProviderFactory, bool) {
	ensureDefaults()

	factoryMu.RLock()
	defer factoryMu.RUnlock()

	f, ok := factories[kind]
	return f, ok
}

func newWatsonx(cfg ProviderConfig) (provider.TextGenerator, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%w: provider %q: base_url is required for watsonx", ErrConfig, cfg.Name)
	}

	return watsonx.New(cfg.BaseURL, cfg.APIKey, nil), nil
}

func newOpenAI(cfg ProviderConfig) (provider.TextGenerator, error) {
	return openai.New(cfg.BaseURL, cfg.APIKey), nil
}

// buildClient creates a remote model client from a ProviderConfig using the
// registered factory for its Kind. If rate limiting is configured, the client
// is wrapped with a RateLimited generator.
func buildClient(cfg ProviderConfig) (provider.TextGenerator, error) {
	factory, ok := getFactory(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("%w: unknown provider kind %q", ErrConfig, cfg.Kind)
	}

	c, err := factory(cfg)
	if err != nil {
		return nil, err
	}

	rl := cfg.RateLimit
	if rl.InputTPM > 0 || rl.OutputTPM > 0 || rl.RPM > 0 || rl.MaxRetries > 0 || rl.BaseDelay != "" {
		var baseDelay time.Duration
		if rl.BaseDelay != "" {
			var parseErr error
			baseDelay, parseErr = time.ParseDuration(rl.BaseDelay)
			if parseErr != nil {
				return nil, fmt.Errorf("%w: provider %q: invalid base_delay %q: %v", ErrConfig, cfg.Name, rl.BaseDelay, parseErr)
			}
		}

		c = provider.NewRateLimited(c, provider.RateLimitOpts{
			InputTPM:   rl.InputTPM,
			OutputTPM:  rl.OutputTPM,
			RPM:        rl.RPM,
			MaxRetries: rl.MaxRetries,
			BaseDelay:  baseDelay,
		})
	}

	return c, nil
}
