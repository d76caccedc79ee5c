package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"bookify-backend/internal/models"
	"bookify-backend/internal/services"
)

type chatService interface {
	Ask(ctx context.Context, userText string) (string, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers POST /chat. Completion failures are reported to the widget as
// a fallback reply with status 200.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	// The outbound call outlives a disconnected client; only its timeout stops it.
	ctx := context.WithoutCancel(r.Context())

	reply, err := h.chatService.Ask(ctx, req.Text)
	if err != nil {
		reply = fallbackReply(err)
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: reply})
}

func fallbackReply(err error) string {
	var upstream *services.UpstreamError
	if errors.As(err, &upstream) {
		return services.FallbackUpstreamReply
	}
	return services.FallbackUnexpectedReply
}
