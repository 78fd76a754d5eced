package retrieval

import (
	"context"
	"fmt"
	"strings"
)

// ContextSeparator joins retrieved chunk texts into one context string
const ContextSeparator = "\n\n---\n\n"

// Retrieve embeds the query, searches the index for the k most similar
// chunks and joins their texts into a single context string. A k of zero
// or an empty index yields an empty string, not an error.
func (m *Manager) Retrieve(ctx context.Context, query string, k int) (string, error) {
	if k <= 0 {
		return "", nil
	}

	idx, err := m.Index(ctx)
	if err != nil {
		return "", err
	}

	vector, err := m.embedder.EmbedOne(ctx, query)
	if err != nil {
		return "", fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := idx.Search(vector, k)
	if err != nil {
		return "", fmt.Errorf("failed to search index: %w", err)
	}

	texts := make([]string, 0, len(results))
	for _, r := range results {
		texts = append(texts, r.Chunk.Text)
	}
	return strings.Join(texts, ContextSeparator), nil
}
