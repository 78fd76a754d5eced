package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"qamentor/src/core/chat"
)

type chatRequest struct {
	Messages []chat.Message `json:"messages" binding:"required,min=1,dive"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat answers the latest user question in a conversation, grounded in the
// knowledge base. Expects {"messages": [{"role": "user"|"assistant",
// "content": "..."}]} and returns {"reply": "..."}.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err)
		return
	}

	lastMsg := req.Messages[len(req.Messages)-1]
	if lastMsg.Role != "user" {
		sendError(c, http.StatusBadRequest, fmt.Errorf("last message must be from user"))
		return
	}

	answer, err := h.chatService.Answer(c.Request.Context(), req.Messages)
	if err != nil {
		sendError(c, http.StatusInternalServerError, err)
		return
	}

	sendJSON(c, http.StatusOK, chatResponse{Reply: answer.Content})
}
