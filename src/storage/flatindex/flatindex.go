// Package flatindex implements an exact nearest-neighbor vector index over
// chunk embeddings. Vectors are held in memory and scanned with cosine
// similarity; the index persists as a pair of companion artifacts, a binary
// structure file holding the vectors and a JSON content file holding the
// chunk texts and metadata. Both artifacts must exist together for a load
// to succeed.
package flatindex

import (
	"bytes"
	"context"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sort"

	"qamentor/src/fsutil"
)

const (
	// StructureFile is the binary artifact holding vector geometry
	StructureFile = "index.bin"
	// ContentFile is the JSON artifact holding chunk texts and metadata
	ContentFile = "chunks.json"

	embedBatchSize = 64
)

// Chunk is one indexed unit of text with its source metadata
type Chunk struct {
	ID       string            `json:"id"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is a single similarity search hit
type Result struct {
	Chunk Chunk
	Score float64
}

// Embedder produces embedding vectors for a batch of texts
type Embedder interface {
	EmbedMany(ctx context.Context, texts []string) ([][]float32, error)
}

// Index holds chunk vectors and their texts. It is immutable after Build
// or Load; concurrent Search calls need no synchronization.
type Index struct {
	dim     int
	vectors [][]float32
	norms   []float64
	chunks  []Chunk
}

type structurePayload struct {
	Dimension int
	Vectors   [][]float32
}

type contentPayload struct {
	Chunks []Chunk `json:"chunks"`
}

// Build embeds all chunks in batches and constructs an index over them.
// Every vector must share the dimensionality of the first one.
func Build(ctx context.Context, chunks []Chunk, embedder Embedder) (*Index, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	vectors := make([][]float32, 0, len(chunks))
	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, c := range chunks[start:end] {
			texts = append(texts, c.Text)
		}

		batch, err := embedder.EmbedMany(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk batch: %w", err)
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(batch), len(texts))
		}
		vectors = append(vectors, batch...)
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d", i, len(v), dim)
		}
	}

	return &Index{
		dim:     dim,
		vectors: vectors,
		norms:   computeNorms(vectors),
		chunks:  chunks,
	}, nil
}

// Search returns the k chunks most similar to the query vector, in strictly
// descending similarity order. Ties keep insertion order. A k of zero or
// less yields an empty result.
func (idx *Index) Search(query []float32, k int) ([]Result, error) {
	if len(query) != idx.dim {
		return nil, &DimensionError{Got: len(query), Want: idx.dim}
	}
	if k <= 0 || len(idx.chunks) == 0 {
		return []Result{}, nil
	}

	queryNorm := vectorNorm(query)
	scores := make([]float64, len(idx.vectors))
	for i, v := range idx.vectors {
		scores[i] = cosine(query, queryNorm, v, idx.norms[i])
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}
	results := make([]Result, 0, k)
	for _, i := range order[:k] {
		results = append(results, Result{Chunk: idx.chunks[i], Score: scores[i]})
	}
	return results, nil
}

// Save persists both artifacts into dir. Each artifact is written through a
// temp file and rename so a partially written file is never left in place.
func (idx *Index) Save(fs fsutil.FileStore, dir string) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(structurePayload{
		Dimension: idx.dim,
		Vectors:   idx.vectors,
	}); err != nil {
		return fmt.Errorf("failed to encode structure artifact: %w", err)
	}

	content, err := json.Marshal(contentPayload{Chunks: idx.chunks})
	if err != nil {
		return fmt.Errorf("failed to encode content artifact: %w", err)
	}

	if err := fs.WriteFileAtomic(filepath.Join(dir, StructureFile), buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write structure artifact: %w", err)
	}
	if err := fs.WriteFileAtomic(filepath.Join(dir, ContentFile), content); err != nil {
		return fmt.Errorf("failed to write content artifact: %w", err)
	}
	return nil
}

// Load reads both artifacts from dir and reconstructs the index. The two
// artifacts must agree on the number of stored chunks.
func Load(fs fsutil.FileStore, dir string) (*Index, error) {
	structData, err := fs.ReadFile(filepath.Join(dir, StructureFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read structure artifact: %w", err)
	}
	contentData, err := fs.ReadFile(filepath.Join(dir, ContentFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read content artifact: %w", err)
	}

	var structure structurePayload
	if err := gob.NewDecoder(bytes.NewReader(structData)).Decode(&structure); err != nil {
		return nil, fmt.Errorf("failed to decode structure artifact: %w", err)
	}
	var content contentPayload
	if err := json.Unmarshal(contentData, &content); err != nil {
		return nil, fmt.Errorf("failed to decode content artifact: %w", err)
	}

	if len(structure.Vectors) != len(content.Chunks) {
		return nil, fmt.Errorf("artifact mismatch: %d vectors but %d chunks",
			len(structure.Vectors), len(content.Chunks))
	}
	for i, v := range structure.Vectors {
		if len(v) != structure.Dimension {
			return nil, fmt.Errorf("vector %d has dimension %d, want %d",
				i, len(v), structure.Dimension)
		}
	}

	return &Index{
		dim:     structure.Dimension,
		vectors: structure.Vectors,
		norms:   computeNorms(structure.Vectors),
		chunks:  content.Chunks,
	}, nil
}

// Len returns the number of indexed chunks
func (idx *Index) Len() int {
	return len(idx.chunks)
}

// Dimension returns the vector dimensionality of the index
func (idx *Index) Dimension() int {
	return idx.dim
}

func computeNorms(vectors [][]float32) []float64 {
	norms := make([]float64, len(vectors))
	for i, v := range vectors {
		norms[i] = vectorNorm(v)
	}
	return norms
}

func vectorNorm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a []float32, aNorm float64, b []float32, bNorm float64) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (aNorm * bNorm)
}
