package api

import (
	"alcyxob/coach-app/internal/logger"
	"alcyxob/coach-app/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chat service.ChatService
	log  *logger.Logger
}

func NewChatHandler(chat service.ChatService, log *logger.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

type ChatRequest struct {
	Message string `json:"message" binding:"required"`
	Date    string `json:"date"`
}

// Chat godoc
// @Summary Apply a natural language command to the user's day
// @Description Commands that cannot be applied come back as a reply with no changes.
// @Tags Chat
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChatRequest true "Message and day, defaults to today"
// @Success 200 {object} Envelope "intent, reply and changes"
// @Failure 400 {object} Envelope "Missing message"
// @Failure 429 {object} Envelope "Rate limited"
// @Failure 500 {object} Envelope "Generation failed"
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.chat.Handle(c.Request.Context(), user.ID, req.Message, orToday(req.Date))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	respondOK(c, result)
}
