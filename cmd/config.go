package cmd

import "github.com/spf13/viper"

func settingDefaultConfig() {
	// Enable automatic environment variable binding
	viper.AutomaticEnv()

	// Map environment variables to Viper keys for the server
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Map environment variables to Viper keys for the knowledge base and index
	viper.BindEnv("kb.path", "KB_PATH")
	viper.BindEnv("index.path", "INDEX_DIR")

	// Map environment variables to Viper keys for Ollama and retrieval
	viper.BindEnv("ollama.url", "OLLAMA_URL")
	viper.BindEnv("rag.embedding_model", "RAG_EMBEDDING_MODEL")
	viper.BindEnv("rag.reasoning_model", "RAG_REASONING_MODEL")
	viper.BindEnv("rag.chunk_size", "RAG_CHUNK_SIZE")
	viper.BindEnv("rag.chunk_overlap", "RAG_CHUNK_OVERLAP")
	viper.BindEnv("rag.top_k", "RAG_TOP_K")

	// Set default values for the server
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.shutdown_timeout", "5s")

	// Set default values for the knowledge base and index
	viper.SetDefault("kb.path", "./knowledge_base")
	viper.SetDefault("index.path", "./qa_index")

	// Set default values for Ollama and retrieval
	viper.SetDefault("ollama.url", "http://localhost:11434/api")
	viper.SetDefault("rag.embedding_model", "nomic-embed-text")
	viper.SetDefault("rag.reasoning_model", "llama3.1")
	viper.SetDefault("rag.chunk_size", 800)
	viper.SetDefault("rag.chunk_overlap", 150)
	viper.SetDefault("rag.top_k", 4)
}
