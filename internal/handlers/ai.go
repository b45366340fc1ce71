package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"mets-backend/internal/ai"
	"mets-backend/internal/models"
)

// AIHandler exposes the chat adapter. Provider failures are answered with
// demo responses, so these endpoints only fail on malformed requests.
type AIHandler struct {
	ai *ai.Service
}

func NewAIHandler(aiService *ai.Service) *AIHandler {
	return &AIHandler{ai: aiService}
}

// Chat godoc
// @Summary     Send a chat message
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.ChatRequest true "Message with optional history"
// @Success     200 {object} models.ChatResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/ai/chat [post]
func (h *AIHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	resp := h.ai.SendMessage(c.Request.Context(), ai.MessageContent{Text: req.Message, ImageURL: req.ImageURL}, req.History, req.Options)
	c.JSON(http.StatusOK, resp)
}

// Ask godoc
// @Summary     Ask a one-shot question
// @Tags        ai
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.AskRequest true "Prompt"
// @Success     200 {object} models.ChatResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /api/v1/ai/ask [post]
func (h *AIHandler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "invalid request", Message: err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.ai.Ask(c.Request.Context(), req.Prompt, req.Options))
}

// Status godoc
// @Summary     AI provider status
// @Tags        ai
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.ServiceStatus
// @Router      /api/v1/ai/status [get]
func (h *AIHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.ai.Status())
}
