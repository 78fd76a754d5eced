package retrieval

import "errors"

var (
	// ErrKnowledgeBaseNotFound is returned when the source document
	// directory is missing or contains no recognized documents
	ErrKnowledgeBaseNotFound = errors.New("knowledge base not found")

	// ErrCorruptedIndex is returned when exactly one of the two persisted
	// index artifacts exists. The operator must remove the index directory
	// to force a rebuild; it is never repaired automatically.
	ErrCorruptedIndex = errors.New("persisted index is corrupted")

	// ErrNoChunks is returned when documents were loaded but chunking
	// produced no text, e.g. PDFs without extractable text
	ErrNoChunks = errors.New("documents produced no text chunks")
)
