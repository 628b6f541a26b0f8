package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/local/studyai/api/genai"
	"github.com/rs/zerolog/log"
)

type ChatRequest struct {
	Message string `json:"message" binding:"required,max=4000"`
}

func (h *Handler) ChatAsk(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reply, err := h.tutor.Ask(c.Request.Context(), ws.Chat, req.Message)
	if err != nil {
		if genai.IsConfiguration(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Generation service is not configured"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	log.Debug().Str("workspace_id", ws.ID).Int("reply_len", len(reply)).Msg("Tutor replied")

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *Handler) ChatHistory(c *gin.Context) {
	ws, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"learner": ws.Chat.Learner(), "history": ws.Chat.History()})
}
