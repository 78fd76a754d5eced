package kb

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/textsplitter"

	"qamentor/src/core/retrieval"
)

// separators are tried in priority order so splits land on paragraph,
// line, sentence, comma or word boundaries before a hard character cut
var separators = []string{"\n\n", "\n", ".", "!", "?", ",", " ", ""}

// RecursiveChunker splits documents into overlapping chunks of at most
// size runes. Splitting is deterministic: the same documents and
// parameters always produce the same chunk sequence.
type RecursiveChunker struct {
	size    int
	overlap int
}

// NewRecursiveChunker validates the parameters and creates a chunker
func NewRecursiveChunker(size, overlap int) (*RecursiveChunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap %d must be non-negative and smaller than chunk size %d", overlap, size)
	}
	return &RecursiveChunker{size: size, overlap: overlap}, nil
}

// Split chunks every document, carrying the source metadata onto each
// chunk. Whitespace-only documents contribute no chunks.
func (c *RecursiveChunker) Split(docs []retrieval.Document) ([]retrieval.Chunk, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.size),
		textsplitter.WithChunkOverlap(c.overlap),
		textsplitter.WithSeparators(separators),
		textsplitter.WithLenFunc(utf8.RuneCountInString),
	)

	var chunks []retrieval.Chunk
	for _, doc := range docs {
		parts, err := splitter.SplitText(doc.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split document %q page %d: %w",
				doc.Metadata.Source, doc.Metadata.Page, err)
		}
		for _, part := range parts {
			if strings.TrimSpace(part) == "" {
				continue
			}
			chunks = append(chunks, retrieval.Chunk{
				Text:     part,
				Metadata: doc.Metadata,
			})
		}
	}
	return chunks, nil
}
