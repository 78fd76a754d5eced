// Package chat composes grounded answers: it retrieves knowledge-base
// context for the latest user question and feeds context, conversation
// history and the question to the language model.
package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message is one conversation turn
type Message struct {
	MessageID string    `json:"messageId,omitempty"`
	Role      string    `json:"role" binding:"required"`
	Content   string    `json:"content" binding:"required"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Retriever fetches a context string of the k chunks most relevant to a query
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) (string, error)
}

// LLMProvider generates an answer from a system prompt and a user prompt
type LLMProvider interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Service generates grounded answers for a conversation
type Service interface {
	Answer(ctx context.Context, messages []Message) (*Message, error)
}

type service struct {
	retriever Retriever
	llm       LLMProvider
	topK      int
}

// NewService creates a chat service retrieving topK chunks per question
func NewService(retriever Retriever, llm LLMProvider, topK int) Service {
	return &service{
		retriever: retriever,
		llm:       llm,
		topK:      topK,
	}
}

func (s *service) Answer(ctx context.Context, messages []Message) (*Message, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	history, input := splitHistory(messages)

	contextStr, err := s.retriever.Retrieve(ctx, input, s.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to get context: %w", err)
	}

	completion, err := s.llm.Generate(ctx, qaSystemPrompt, formatPrompt(history, contextStr, input))
	if err != nil {
		return nil, fmt.Errorf("failed to generate completion: %w", err)
	}

	return &Message{
		MessageID: uuid.New().String(),
		Role:      "assistant",
		Content:   completion,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// splitHistory separates the latest question from the preceding turns
func splitHistory(messages []Message) ([]Message, string) {
	last := messages[len(messages)-1]
	return messages[:len(messages)-1], last.Content
}
