package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/askdoc-io/askdoc/internal/pkg/response"
	"github.com/askdoc-io/askdoc/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatRequest struct {
	Message   string `json:"message"`
	FileID    string `json:"file_id"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Answer string `json:"answer"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "message is required")
		return
	}
	if req.FileID == "" {
		response.Error(c, http.StatusBadRequest, "invalid", "file_id is required")
		return
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = "default"
	}
	answer, err := h.chat.Ask(c.Request.Context(), req.Message, req.FileID, sessionID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chatResponse{Answer: answer})
}
