package engine

import (
	"fmt"
	"log/slog"

	"github.com/germanamz/chainy/pkg/modeladapter"
	"github.com/germanamz/chainy/pkg/retrieval"
	weavstore "github.com/germanamz/chainy/pkg/retrieval/weaviate"
)

// Engine is the composition root: it validates configuration, builds the
// configured model adapters once, and hands them out by name. Adapters are
// immutable, so an Engine is safe for concurrent use after New returns.
type Engine struct {
	cfg      Config
	adapters map[string]*modeladapter.Adapter
}

// New creates an Engine from the given configuration. It validates the config
// and constructs one adapter per provider entry. No network I/O happens here;
// a bad endpoint surfaces on the first Generate call.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		adapters: make(map[string]*modeladapter.Adapter, len(cfg.Providers)),
	}

	for _, pc := range cfg.Providers {
		client, err := buildClient(pc)
		if err != nil {
			return nil, fmt.Errorf("engine: provider %q: %w", pc.Name, err)
		}

		e.adapters[pc.Name] = modeladapter.New(client, pc.Model, pc.ProjectID, pc.Params.Params())

		slog.Debug("engine: provider ready", "name", pc.Name, "kind", pc.Kind, "model", pc.Model)
	}

	return e, nil
}

// Adapter returns the adapter configured under name.
func (e *Engine) Adapter(name string) (*modeladapter.Adapter, error) {
	a, ok := e.adapters[name]
	if !ok {
		return nil, fmt.Errorf("engine: provider %q not found", name)
	}

	return a, nil
}

// Default returns the adapter named by default_provider, falling back to the
// first configured provider.
func (e *Engine) Default() *modeladapter.Adapter {
	name := e.cfg.DefaultProvider
	if name == "" {
		name = e.cfg.Providers[0].Name
	}

	return e.adapters[name]
}

// QAChain builds a document-grounded QA chain from the retrieval section of
// the config, answering with the default adapter.
func (e *Engine) QAChain() (*retrieval.QAChain, error) {
	rc := e.cfg.Retrieval
	if rc.URL == "" {
		return nil, fmt.Errorf("%w: retrieval url is required for QA", ErrConfig)
	}

	store, err := weavstore.New(weavstore.Config{
		URL:          rc.URL,
		Class:        rc.Class,
		ContentField: rc.ContentField,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: retrieval: %w", err)
	}

	qa := retrieval.NewQAChain(store, e.Default())
	qa.K = rc.K

	return qa, nil
}
