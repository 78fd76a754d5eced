// Package retrieval owns the knowledge-base index lifecycle and the query
// path that turns a question into a context string for answer generation.
package retrieval

import "context"

// Metadata traces a document or chunk back to its source file
type Metadata struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
}

// Document is the text of one source unit, a single PDF page
type Document struct {
	Text     string
	Metadata Metadata
}

// Chunk is a bounded slice of a document's text, the unit of indexing
type Chunk struct {
	ID       string
	Text     string
	Metadata Metadata
}

// DocumentLoader reads source documents from a directory
type DocumentLoader interface {
	Load(ctx context.Context, dir string) ([]Document, error)
}

// Chunker splits documents into overlapping chunks
type Chunker interface {
	Split(docs []Document) ([]Chunk, error)
}

// Embedder maps text into the vector space of the index. EmbedOne must
// produce vectors comparable to those from EmbedMany.
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
	EmbedOne(ctx context.Context, text string) ([]float32, error)
}
