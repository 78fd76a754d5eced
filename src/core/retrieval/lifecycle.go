package retrieval

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"

	"qamentor/src/fsutil"
	"qamentor/src/log"
	"qamentor/src/storage/flatindex"
)

// Config holds the paths and parameters for the index lifecycle
type Config struct {
	// KnowledgeBasePath is the directory holding source PDF documents
	KnowledgeBasePath string
	// IndexPath is the directory holding the persisted index artifacts
	IndexPath string
}

// Manager owns the process-wide index handle. The first Index call either
// loads the persisted artifacts or builds the index from source documents;
// after that the handle is immutable and every call is a lock-free-ish read.
// Construct one Manager per process and pass it to whoever needs retrieval.
type Manager struct {
	cfg      Config
	loader   DocumentLoader
	chunker  Chunker
	embedder Embedder
	fs       fsutil.FileStore
	ids      *snowflake.Node

	mu    sync.RWMutex
	index *flatindex.Index
}

// NewManager creates an uninitialized lifecycle manager
func NewManager(cfg Config, loader DocumentLoader, chunker Chunker, embedder Embedder, fs fsutil.FileStore) (*Manager, error) {
	node, err := snowflake.NewNode(1)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node: %w", err)
	}

	return &Manager{
		cfg:      cfg,
		loader:   loader,
		chunker:  chunker,
		embedder: embedder,
		fs:       fs,
		ids:      node,
	}, nil
}

// Index returns the process-wide index, loading or building it on first
// use. Concurrent first calls serialize on the manager's lock so the
// build-or-load sequence runs at most once per process.
func (m *Manager) Index(ctx context.Context) (*flatindex.Index, error) {
	m.mu.RLock()
	idx := m.index
	m.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != nil {
		return m.index, nil
	}

	idx, err := m.loadOrBuild(ctx)
	if err != nil {
		return nil, err
	}
	m.index = idx
	return idx, nil
}

// Ready reports whether the in-memory index handle is initialized
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.index != nil
}

// ChunkCount returns the number of indexed chunks, zero when uninitialized
func (m *Manager) ChunkCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.index == nil {
		return 0
	}
	return m.index.Len()
}

func (m *Manager) loadOrBuild(ctx context.Context) (*flatindex.Index, error) {
	structExists, err := m.fs.Exists(filepath.Join(m.cfg.IndexPath, flatindex.StructureFile))
	if err != nil {
		return nil, fmt.Errorf("failed to stat structure artifact: %w", err)
	}
	contentExists, err := m.fs.Exists(filepath.Join(m.cfg.IndexPath, flatindex.ContentFile))
	if err != nil {
		return nil, fmt.Errorf("failed to stat content artifact: %w", err)
	}

	if structExists != contentExists {
		return nil, fmt.Errorf(
			"index directory %q has %s=%t and %s=%t, remove the directory to force a rebuild: %w",
			m.cfg.IndexPath,
			flatindex.StructureFile, structExists,
			flatindex.ContentFile, contentExists,
			ErrCorruptedIndex,
		)
	}

	if structExists && contentExists {
		idx, err := flatindex.Load(m.fs, m.cfg.IndexPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted index: %w", err)
		}
		log.Info("loaded persisted index",
			"path", m.cfg.IndexPath,
			"chunks", idx.Len(),
			"dimension", idx.Dimension())
		return idx, nil
	}

	return m.build(ctx)
}

func (m *Manager) build(ctx context.Context) (*flatindex.Index, error) {
	isDir, err := m.fs.IsDir(m.cfg.KnowledgeBasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat knowledge base directory: %w", err)
	}
	if !isDir {
		return nil, fmt.Errorf("knowledge base directory %q does not exist: %w",
			m.cfg.KnowledgeBasePath, ErrKnowledgeBaseNotFound)
	}

	docs, err := m.loader.Load(ctx, m.cfg.KnowledgeBasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load documents: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents found in %q: %w",
			m.cfg.KnowledgeBasePath, ErrKnowledgeBaseNotFound)
	}

	chunks, err := m.chunker.Split(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to split documents: %w", err)
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%d documents from %q contained no extractable text: %w",
			len(docs), m.cfg.KnowledgeBasePath, ErrNoChunks)
	}

	records := make([]flatindex.Chunk, 0, len(chunks))
	for _, c := range chunks {
		records = append(records, flatindex.Chunk{
			ID:   m.ids.Generate().String(),
			Text: c.Text,
			Metadata: map[string]string{
				"source": c.Metadata.Source,
				"page":   strconv.Itoa(c.Metadata.Page),
			},
		})
	}

	log.Info("building index",
		"documents", len(docs),
		"chunks", len(records))

	idx, err := flatindex.Build(ctx, records, m.embedder)
	if err != nil {
		return nil, fmt.Errorf("failed to build index: %w", err)
	}

	if err := m.fs.MakeDirectory(m.cfg.IndexPath); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}
	if err := idx.Save(m.fs, m.cfg.IndexPath); err != nil {
		return nil, fmt.Errorf("failed to persist index: %w", err)
	}

	log.Info("index built and persisted",
		"path", m.cfg.IndexPath,
		"chunks", idx.Len(),
		"dimension", idx.Dimension())
	return idx, nil
}
