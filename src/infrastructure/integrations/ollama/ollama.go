package ollama

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"qamentor/src/log"
)

const (
	DefaultURL = "http://localhost:11434/api"
)

// EmbeddingRequest represents the request structure for a single embedding
type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// EmbeddingResponse represents the response structure for a single embedding
type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// BatchEmbeddingRequest represents the request structure for batch embeddings
type BatchEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// BatchEmbeddingResponse represents the response structure for batch embeddings
type BatchEmbeddingResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

// GenerateRequest represents the request structure for model generation
type GenerateRequest struct {
	Model   string                 `json:"model"`
	System  string                 `json:"system"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// GenerateResponse represents one streamed line of a generation response
type GenerateResponse struct {
	Model     string `json:"model"`
	Response  string `json:"response"`
	Done      bool   `json:"done"`
	Truncated bool   `json:"truncated,omitempty"`
}

// ErrTruncated is returned when the response was truncated by the model
type ErrTruncated struct {
	Message string
}

func (e *ErrTruncated) Error() string {
	return e.Message
}

// Client represents an Ollama API client
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a new Ollama API client
func NewClient(baseURL string, c *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}

	return &Client{
		httpClient: c,
		baseURL:    baseURL,
	}
}

// GetEmbedding generates an embedding vector for a single text
func (c *Client) GetEmbedding(ctx context.Context, model string, text string) ([]float32, error) {
	var result EmbeddingResponse
	if err := c.postJSON(ctx, "/embeddings", EmbeddingRequest{
		Model:  model,
		Prompt: text,
	}, &result); err != nil {
		return nil, err
	}
	return toFloat32(result.Embedding), nil
}

// GetEmbeddings generates embedding vectors for a batch of texts in one call
func (c *Client) GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error) {
	var result BatchEmbeddingResponse
	if err := c.postJSON(ctx, "/embed", BatchEmbeddingRequest{
		Model: model,
		Input: texts,
	}, &result); err != nil {
		return nil, err
	}

	vectors := make([][]float32, 0, len(result.Embeddings))
	for _, e := range result.Embeddings {
		vectors = append(vectors, toFloat32(e))
	}
	return vectors, nil
}

// Generate performs model generation with the given system and user prompt,
// reading the streamed NDJSON response until the model reports completion
func (c *Client) Generate(ctx context.Context, model, system, prompt string, options map[string]interface{}) (string, error) {
	jsonData, err := json.Marshal(GenerateRequest{
		Model:   model,
		System:  system,
		Prompt:  prompt,
		Stream:  true,
		Options: options,
	})
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/generate", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error(err, "failed to make request to ollama")
		return "", fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s from ollama", resp.Status)
	}

	reader := bufio.NewReader(resp.Body)
	var fullResponse strings.Builder

	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("error reading response: %w", err)
		}

		if len(bytes.TrimSpace(line)) > 0 {
			var response GenerateResponse
			if err := json.Unmarshal(line, &response); err != nil {
				log.Error(err, "failed to unmarshal response line", "line", string(line))
				return "", fmt.Errorf("error unmarshaling response: %w", err)
			}

			fullResponse.WriteString(response.Response)

			if response.Truncated {
				return "", &ErrTruncated{Message: "response was truncated by the model"}
			}
			if response.Done {
				return fullResponse.String(), nil
			}
		}

		if err == io.EOF {
			break
		}
	}

	if fullResponse.Len() > 0 {
		return fullResponse.String(), nil
	}
	return "", fmt.Errorf("no response received from ollama")
}

func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from ollama", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}
	return nil
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}
