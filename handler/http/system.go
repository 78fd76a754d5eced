package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type healthResponse struct {
	Status     string `json:"status"`
	IndexReady bool   `json:"indexReady"`
	Chunks     int    `json:"chunks"`
}

// CheckHealth reports service liveness and the retrieval index state
func (h *Handler) CheckHealth(c *gin.Context) {
	sendJSON(c, http.StatusOK, healthResponse{
		Status:     "ok",
		IndexReady: h.status.Ready(),
		Chunks:     h.status.ChunkCount(),
	})
}
