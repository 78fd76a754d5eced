/*
Copyright © 2024 Dean
*/
package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"qamentor/src/core/retrieval"
	"qamentor/src/fsutil"
	"qamentor/src/infrastructure/integrations/ollama"
	"qamentor/src/kb"
	"qamentor/src/log"
)

var rebuildIndex bool

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the knowledge base index offline",
	Long: `The index command builds (or loads and verifies) the vector index
from the knowledge base PDFs so the server can start with a warm index.
Use --rebuild to discard existing artifacts first, e.g. after the index
directory was reported corrupted.`,
	Run: RunIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolVar(&rebuildIndex, "rebuild", false, "remove existing index artifacts before building")
}

func RunIndex(cmd *cobra.Command, args []string) {
	fs := fsutil.NewLocalFileStore()

	indexPath := viper.GetString("index.path")
	if rebuildIndex {
		if err := fs.RemoveAll(indexPath); err != nil {
			log.Error(err, "Failed to remove index directory", "path", indexPath)
			return
		}
		log.Info("Removed existing index artifacts", "path", indexPath)
	}

	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 120 * time.Second,
	})
	provider := ollama.NewProvider(
		oc,
		viper.GetString("rag.embedding_model"),
		viper.GetString("rag.reasoning_model"),
	)

	loader := kb.NewPDFLoader(fs)
	chunker, err := kb.NewRecursiveChunker(
		viper.GetInt("rag.chunk_size"),
		viper.GetInt("rag.chunk_overlap"),
	)
	if err != nil {
		log.Error(err, "Invalid chunking configuration")
		return
	}

	bar := progressbar.Default(-1, "embedding chunks")
	manager, err := retrieval.NewManager(retrieval.Config{
		KnowledgeBasePath: viper.GetString("kb.path"),
		IndexPath:         indexPath,
	}, loader, chunker, &progressEmbedder{Embedder: provider, bar: bar}, fs)
	if err != nil {
		log.Error(err, "Failed to create index lifecycle manager")
		return
	}

	idx, err := manager.Index(context.Background())
	if err != nil {
		log.Error(err, "Failed to build index")
		return
	}
	bar.Finish()

	log.Info("Index ready",
		"path", indexPath,
		"chunks", idx.Len(),
		"dimension", idx.Dimension())
}

// progressEmbedder advances the progress bar as chunk batches are embedded
type progressEmbedder struct {
	retrieval.Embedder
	bar *progressbar.ProgressBar
}

func (p *progressEmbedder) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	vectors, err := p.Embedder.EmbedMany(ctx, texts)
	if err == nil {
		p.bar.Add(len(texts))
	}
	return vectors, err
}
