/*
Copyright © 2024 Dean
*/
package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	httpHdlr "qamentor/handler/http"
	"qamentor/src/core/chat"
	"qamentor/src/core/retrieval"
	"qamentor/src/fsutil"
	"qamentor/src/infrastructure/integrations/ollama"
	"qamentor/src/kb"
	"qamentor/src/log"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the QA mentor server",
	Long:  `The serve command starts an HTTP server that answers questions grounded in the knowledge base.`,
	Run:   RunServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func RunServer(cmd *cobra.Command, args []string) {
	// Initialize Ollama client. Generation streams for a while, so the
	// timeout is generous.
	oc := ollama.NewClient(viper.GetString("ollama.url"), &http.Client{
		Timeout: 120 * time.Second,
	})
	provider := ollama.NewProvider(
		oc,
		viper.GetString("rag.embedding_model"),
		viper.GetString("rag.reasoning_model"),
	)

	// Initialize file store and knowledge base components
	fs := fsutil.NewLocalFileStore()
	loader := kb.NewPDFLoader(fs)

	chunker, err := kb.NewRecursiveChunker(
		viper.GetInt("rag.chunk_size"),
		viper.GetInt("rag.chunk_overlap"),
	)
	if err != nil {
		log.Error(err, "Invalid chunking configuration")
		return
	}

	// Initialize the index lifecycle manager. The index itself is built or
	// loaded lazily on the first chat request.
	manager, err := retrieval.NewManager(retrieval.Config{
		KnowledgeBasePath: viper.GetString("kb.path"),
		IndexPath:         viper.GetString("index.path"),
	}, loader, chunker, provider, fs)
	if err != nil {
		log.Error(err, "Failed to create index lifecycle manager")
		return
	}

	chatService := chat.NewService(manager, provider, viper.GetInt("rag.top_k"))

	// Initialize HTTP handler
	handler := httpHdlr.NewHandler(chatService, manager)

	// Setup gin router
	r := gin.Default()

	// Register routes
	handler.RegisterRoutes(r)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + viper.GetString("server.port"),
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(err, "Failed to start server")
			return
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Parse shutdown timeout
	timeout, err := time.ParseDuration(viper.GetString("server.shutdown_timeout"))
	if err != nil {
		log.Error(err, "Invalid shutdown timeout, using default 5s")
		timeout = 5 * time.Second
	}

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(ctx); err != nil {
		log.Error(err, "Server forced to shutdown")
	}

	log.Info("Server exited")
}
