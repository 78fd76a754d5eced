package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"qamentor/src/core/chat"
	"qamentor/src/core/retrieval"
)

// IndexStatus reports the lifecycle state of the retrieval index
type IndexStatus interface {
	Ready() bool
	ChunkCount() int
}

type Handler struct {
	chatService chat.Service
	status      IndexStatus
}

func NewHandler(chatService chat.Service, status IndexStatus) *Handler {
	return &Handler{
		chatService: chatService,
		status:      status,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")

	api.POST("/chat", h.Chat)
	api.GET("/health", h.CheckHealth)
}

// ErrorResponse is the common error body; it carries a message string and
// never internal error detail beyond that
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, status int, err error) {
	code := "INTERNAL_ERROR"
	switch {
	case status == http.StatusBadRequest:
		code = "BAD_REQUEST"
	case errors.Is(err, retrieval.ErrKnowledgeBaseNotFound):
		code = "KNOWLEDGE_BASE_NOT_FOUND"
	case errors.Is(err, retrieval.ErrCorruptedIndex):
		code = "CORRUPTED_INDEX"
	case errors.Is(err, retrieval.ErrNoChunks):
		code = "EMPTY_KNOWLEDGE_BASE"
	}

	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}
