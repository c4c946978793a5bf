// Package weaviate provides a retrieval.Index backed by a Weaviate vector
// database, using its nearText semantic search.
package weaviate

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/germanamz/chainy/pkg/retrieval"
)

// DefaultClass is the Weaviate class queried when Config.Class is empty.
const DefaultClass = "Passage"

// DefaultContentField is the property holding passage text.
const DefaultContentField = "content"

// Config describes the Weaviate deployment and schema to query.
type Config struct {
	URL          string // Server URL, e.g. "http://localhost:8080".
	Class        string // Class name; defaults to DefaultClass.
	ContentField string // Text property; defaults to DefaultContentField.
}

// Store retrieves passages from a Weaviate class by semantic similarity.
type Store struct {
	client       *weaviate.Client
	class        string
	contentField string
}

var _ retrieval.Index = (*Store)(nil)

// New connects a Store to the deployment described by cfg. Construction does
// not contact the server; connectivity failures surface on first use.
func New(cfg Config) (*Store, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("weaviate: invalid url %q", cfg.URL)
	}

	client, err := weaviate.NewClient(weaviate.Config{
		Host:   parsed.Host,
		Scheme: parsed.Scheme,
	})
	if err != nil {
		return nil, fmt.Errorf("weaviate: create client: %w", err)
	}

	class := cfg.Class
	if class == "" {
		class = DefaultClass
	}

	field := cfg.ContentField
	if field == "" {
		field = DefaultContentField
	}

	return &Store{client: client, class: class, contentField: field}, nil
}

// Retrieve returns up to k passage texts nearest to query, ordered by
// similarity.
func (s *Store) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	nearText := s.client.GraphQL().NearTextArgBuilder().
		WithConcepts([]string{query})

	result, err := s.client.GraphQL().Get().
		WithClassName(s.class).
		WithFields(graphql.Field{Name: s.contentField}).
		WithNearText(nearText).
		WithLimit(k).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("weaviate: semantic search: %w", err)
	}

	if len(result.Errors) > 0 {
		return nil, fmt.Errorf("weaviate: search error: %s", result.Errors[0].Message)
	}

	passages, err := parsePassages(result, s.class, s.contentField)
	if err != nil {
		return nil, err
	}

	slog.Debug("weaviate retrieval", "class", s.class, "query", query, "k", k, "hits", len(passages))

	return passages, nil
}

// AddPassages indexes passage texts into the store's class in one batch
// request. Vectorization is left to the class's configured vectorizer module.
func (s *Store) AddPassages(ctx context.Context, passages []string) error {
	if len(passages) == 0 {
		return nil
	}

	objects := make([]*models.Object, len(passages))
	for i, p := range passages {
		objects[i] = &models.Object{
			Class: s.class,
			Properties: map[string]interface{}{
				s.contentField: p,
			},
		}
	}

	_, err := s.client.Batch().ObjectsBatcher().WithObjects(objects...).Do(ctx)
	if err != nil {
		return fmt.Errorf("weaviate: batch import: %w", err)
	}

	slog.Debug("weaviate ingest", "class", s.class, "passages", len(passages))

	return nil
}

// parsePassages extracts the content field from a GraphQL Get response.
func parsePassages(result *models.GraphQLResponse, class, contentField string) ([]string, error) {
	get, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("weaviate: unexpected response shape: missing Get")
	}

	rows, ok := get[class].([]interface{})
	if !ok {
		// The class key is absent when the query matched nothing.
		return nil, nil
	}

	passages := make([]string, 0, len(rows))
	for _, row := range rows {
		props, ok := row.(map[string]interface{})
		if !ok {
			continue
		}

		if text, ok := props[contentField].(string); ok && text != "" {
			passages = append(passages, text)
		}
	}

	return passages, nil
}
