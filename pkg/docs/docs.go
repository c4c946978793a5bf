// Package docs provides the document loading boundary for the indexing
// pipeline: loaders turn files into ordered page texts, and a chunker splits
// pages into index-sized passages. The core chains never import this package.
package docs

import (
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Loader reads a document and returns its pages in order.
type Loader interface {
	Load(path string) ([]string, error)
}

// TextLoader loads plain text files. Form feed characters are treated as page
// breaks; a file without them is a single page.
type TextLoader struct{}

var _ Loader = TextLoader{}

// Load reads the file at path and returns its pages.
func (TextLoader) Load(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		return nil, fmt.Errorf("docs: load %s: %w", path, err)
	}

	var pages []string
	for _, page := range strings.Split(string(data), "\f") {
		if trimmed := strings.TrimSpace(page); trimmed != "" {
			pages = append(pages, trimmed)
		}
	}

	return pages, nil
}

// ChunkOptions configures page splitting.
type ChunkOptions struct {
	Size    int // Target chunk size in characters; defaults to 1000.
	Overlap int // Overlap between adjacent chunks; defaults to 10% of Size.
}

// Chunk splits pages into passages sized for vector indexing, preserving page
// order.
func Chunk(pages []string, opts ChunkOptions) ([]string, error) {
	size := opts.Size
	if size <= 0 {
		size = 1000
	}

	overlap := opts.Overlap
	if overlap <= 0 {
		overlap = size / 10
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(size),
		textsplitter.WithChunkOverlap(overlap),
	)

	var chunks []string
	for i, page := range pages {
		parts, err := splitter.SplitText(page)
		if err != nil {
			return nil, fmt.Errorf("docs: split page %d: %w", i, err)
		}

		chunks = append(chunks, parts...)
	}

	return chunks, nil
}
