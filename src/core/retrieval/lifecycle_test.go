package retrieval_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"qamentor/src/core/retrieval"
	"qamentor/src/fsutil"
	"qamentor/src/storage/flatindex"
)

type fakeLoader struct {
	docs  []retrieval.Document
	calls int32
}

func (f *fakeLoader) Load(ctx context.Context, dir string) ([]retrieval.Document, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.docs, nil
}

type fakeChunker struct {
	chunks []retrieval.Chunk
}

func (f *fakeChunker) Split(docs []retrieval.Document) ([]retrieval.Chunk, error) {
	return f.chunks, nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
	calls   int32
}

func (f *fakeEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	atomic.AddInt32(&f.calls, 1)
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", t)
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	v, ok := f.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func testFixtures() (*fakeLoader, *fakeChunker, *fakeEmbedder) {
	docs := []retrieval.Document{
		{Text: "alpha text", Metadata: retrieval.Metadata{Source: "a.pdf", Page: 1}},
	}
	chunks := []retrieval.Chunk{
		{Text: "alpha text", Metadata: retrieval.Metadata{Source: "a.pdf", Page: 1}},
		{Text: "bravo text", Metadata: retrieval.Metadata{Source: "a.pdf", Page: 2}},
		{Text: "charlie text", Metadata: retrieval.Metadata{Source: "b.pdf", Page: 1}},
	}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha text":   {1, 0},
		"bravo text":   {0, 1},
		"charlie text": {0.9, 0.1},
		"near alpha":   {1, 0.05},
	}}
	return &fakeLoader{docs: docs}, &fakeChunker{chunks: chunks}, embedder
}

func newTestManager(t *testing.T, kbPath, indexPath string) (*retrieval.Manager, *fakeLoader, *fakeEmbedder) {
	t.Helper()
	loader, chunker, embedder := testFixtures()
	m, err := retrieval.NewManager(retrieval.Config{
		KnowledgeBasePath: kbPath,
		IndexPath:         indexPath,
	}, loader, chunker, embedder, fsutil.NewLocalFileStore())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m, loader, embedder
}

func makeKB(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "knowledge_base")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create kb dir: %v", err)
	}
	return dir
}

func TestIndexCorruptedArtifacts(t *testing.T) {
	tests := []struct {
		name string
		keep string
	}{
		{name: "structure artifact only", keep: flatindex.StructureFile},
		{name: "content artifact only", keep: flatindex.ContentFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			indexPath := t.TempDir()
			if err := os.WriteFile(filepath.Join(indexPath, tt.keep), []byte("partial"), 0644); err != nil {
				t.Fatalf("failed to write artifact: %v", err)
			}

			m, loader, _ := newTestManager(t, makeKB(t), indexPath)

			_, err := m.Index(context.Background())
			if !errors.Is(err, retrieval.ErrCorruptedIndex) {
				t.Fatalf("expected ErrCorruptedIndex, got %v", err)
			}
			// A corrupted index must never trigger a silent rebuild
			if n := atomic.LoadInt32(&loader.calls); n != 0 {
				t.Errorf("loader called %d times for corrupted index", n)
			}
		})
	}
}

func TestIndexMissingKnowledgeBase(t *testing.T) {
	m, _, _ := newTestManager(t, filepath.Join(t.TempDir(), "missing"), t.TempDir())

	_, err := m.Index(context.Background())
	if !errors.Is(err, retrieval.ErrKnowledgeBaseNotFound) {
		t.Fatalf("expected ErrKnowledgeBaseNotFound, got %v", err)
	}
}

func TestIndexNoDocuments(t *testing.T) {
	loader := &fakeLoader{docs: nil}
	_, chunker, embedder := testFixtures()
	m, err := retrieval.NewManager(retrieval.Config{
		KnowledgeBasePath: makeKB(t),
		IndexPath:         t.TempDir(),
	}, loader, chunker, embedder, fsutil.NewLocalFileStore())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	_, err = m.Index(context.Background())
	if !errors.Is(err, retrieval.ErrKnowledgeBaseNotFound) {
		t.Fatalf("expected ErrKnowledgeBaseNotFound, got %v", err)
	}
}

func TestIndexNoChunks(t *testing.T) {
	loader, _, embedder := testFixtures()
	m, err := retrieval.NewManager(retrieval.Config{
		KnowledgeBasePath: makeKB(t),
		IndexPath:         t.TempDir(),
	}, loader, &fakeChunker{chunks: nil}, embedder, fsutil.NewLocalFileStore())
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	_, err = m.Index(context.Background())
	if !errors.Is(err, retrieval.ErrNoChunks) {
		t.Fatalf("expected ErrNoChunks, got %v", err)
	}
	if errors.Is(err, retrieval.ErrKnowledgeBaseNotFound) {
		t.Error("zero chunks must not be reported as a missing knowledge base")
	}
}

func TestIndexBuildsOnceUnderConcurrency(t *testing.T) {
	indexPath := filepath.Join(t.TempDir(), "qa_index")
	m, loader, embedder := newTestManager(t, makeKB(t), indexPath)

	const callers = 10
	indexes := make([]*flatindex.Index, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			indexes[i], errs[i] = m.Index(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d failed: %v", i, errs[i])
		}
		if indexes[i] != indexes[0] {
			t.Errorf("caller %d received a different index instance", i)
		}
	}

	if n := atomic.LoadInt32(&loader.calls); n != 1 {
		t.Errorf("documents loaded %d times, want 1", n)
	}
	if n := atomic.LoadInt32(&embedder.calls); n != 1 {
		t.Errorf("embed batches ran %d times, want 1", n)
	}

	for _, name := range []string{flatindex.StructureFile, flatindex.ContentFile} {
		if _, err := os.Stat(filepath.Join(indexPath, name)); err != nil {
			t.Errorf("artifact %s not persisted: %v", name, err)
		}
	}
}

func TestIndexLoadsPersistedArtifacts(t *testing.T) {
	kbPath := makeKB(t)
	indexPath := filepath.Join(t.TempDir(), "qa_index")

	first, _, _ := newTestManager(t, kbPath, indexPath)
	if _, err := first.Index(context.Background()); err != nil {
		t.Fatalf("initial build failed: %v", err)
	}

	// A fresh manager over the same directories must load, not rebuild
	second, loader, embedder := newTestManager(t, kbPath, indexPath)
	idx, err := second.Index(context.Background())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if idx.Len() != 3 {
		t.Errorf("loaded index has %d chunks, want 3", idx.Len())
	}
	if n := atomic.LoadInt32(&loader.calls); n != 0 {
		t.Errorf("loader called %d times when artifacts exist", n)
	}
	if n := atomic.LoadInt32(&embedder.calls); n != 0 {
		t.Errorf("embedder called %d times when artifacts exist", n)
	}
}

func TestRetrieveZeroK(t *testing.T) {
	m, _, _ := newTestManager(t, filepath.Join(t.TempDir(), "missing"), t.TempDir())

	got, err := m.Retrieve(context.Background(), "anything", 0)
	if err != nil {
		t.Fatalf("Retrieve with k=0 failed: %v", err)
	}
	if got != "" {
		t.Errorf("Retrieve with k=0 = %q, want empty string", got)
	}
	if m.Ready() {
		t.Error("Retrieve with k=0 must not initialize the index")
	}
}

func TestRetrieveJoinsRankedChunks(t *testing.T) {
	m, _, _ := newTestManager(t, makeKB(t), filepath.Join(t.TempDir(), "qa_index"))

	got, err := m.Retrieve(context.Background(), "near alpha", 2)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}

	want := "alpha text" + retrieval.ContextSeparator + "charlie text"
	if got != want {
		t.Errorf("Retrieve = %q, want %q", got, want)
	}
	if !m.Ready() {
		t.Error("manager not ready after a successful retrieve")
	}
	if m.ChunkCount() != 3 {
		t.Errorf("ChunkCount = %d, want 3", m.ChunkCount())
	}
}
