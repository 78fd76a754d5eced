// Package kb loads and splits the knowledge-base source documents.
package kb

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/tmc/langchaingo/documentloaders"

	"qamentor/src/core/retrieval"
	"qamentor/src/fsutil"
	"qamentor/src/log"
)

const pdfExtension = ".pdf"

// PDFLoader reads every PDF in a directory and emits one document per page
type PDFLoader struct {
	fs fsutil.FileStore
}

// NewPDFLoader creates a loader backed by the given file store
func NewPDFLoader(fs fsutil.FileStore) *PDFLoader {
	return &PDFLoader{fs: fs}
}

// Load enumerates PDFs in dir in lexical order and extracts their text page
// by page. A missing directory is an error; a directory without PDFs yields
// an empty slice and the caller decides whether that is fatal. A file whose
// text cannot be extracted still counts as a loaded document with no text.
func (l *PDFLoader) Load(ctx context.Context, dir string) ([]retrieval.Document, error) {
	isDir, err := l.fs.IsDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat directory %q: %w", dir, err)
	}
	if !isDir {
		return nil, fmt.Errorf("directory %q does not exist: %w", dir, retrieval.ErrKnowledgeBaseNotFound)
	}

	names, err := l.fs.ListFiles(dir, pdfExtension)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %q: %w", dir, err)
	}

	docs := make([]retrieval.Document, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)
		pages, err := l.loadFile(ctx, path)
		if err != nil {
			// Treat an unparseable PDF as a document with no extractable
			// text so it is counted but contributes no chunks.
			log.Error(err, "failed to extract text from PDF", "path", path)
			docs = append(docs, retrieval.Document{
				Metadata: retrieval.Metadata{Source: path, Page: 1},
			})
			continue
		}
		docs = append(docs, pages...)
	}
	return docs, nil
}

func (l *PDFLoader) loadFile(ctx context.Context, path string) ([]retrieval.Document, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	loader := documentloaders.NewPDF(bytes.NewReader(data), int64(len(data)))
	pages, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %q: %w", path, err)
	}

	docs := make([]retrieval.Document, 0, len(pages))
	for i, page := range pages {
		docs = append(docs, retrieval.Document{
			Text: page.PageContent,
			Metadata: retrieval.Metadata{
				Source: path,
				Page:   i + 1,
			},
		})
	}
	return docs, nil
}
