package ollama

import "context"

// Provider adapts the Ollama client to the embedding and generation
// capabilities the core services consume. The embedding model must be the
// same for documents and queries so their vectors share one space.
type Provider struct {
	client         *Client
	embeddingModel string
	reasoningModel string
}

// NewProvider creates a provider bound to fixed embedding and reasoning models
func NewProvider(client *Client, embeddingModel, reasoningModel string) *Provider {
	return &Provider{
		client:         client,
		embeddingModel: embeddingModel,
		reasoningModel: reasoningModel,
	}
}

// EmbedMany embeds a batch of texts, used at index build time
func (p *Provider) EmbedMany(ctx context.Context, texts []string) ([][]float32, error) {
	return p.client.GetEmbeddings(ctx, p.embeddingModel, texts)
}

// EmbedOne embeds a single text, used at query time
func (p *Provider) EmbedOne(ctx context.Context, text string) ([]float32, error) {
	return p.client.GetEmbedding(ctx, p.embeddingModel, text)
}

// Generate produces an answer for the given system and user prompt
func (p *Provider) Generate(ctx context.Context, system, prompt string) (string, error) {
	return p.client.Generate(ctx, p.reasoningModel, system, prompt, map[string]interface{}{
		"temperature": 0.3,
	})
}
