package services

import (
	"context"

	"bookify-backend/internal/models"
	"bookify-backend/internal/repository"
)

type inventorySource interface {
	Current() *repository.Document
}

type completer interface {
	Complete(ctx context.Context, req models.CompletionRequest) (string, error)
}

// ChatService answers a user's question from the current inventory.
type ChatService struct {
	inventory  inventorySource
	completion completer
	model      string
}

func NewChatService(inventory inventorySource, completion completer, model string) *ChatService {
	return &ChatService{
		inventory:  inventory,
		completion: completion,
		model:      model,
	}
}

// Ask makes one completion call. The error is *UpstreamError or *TransportError.
func (s *ChatService) Ask(ctx context.Context, userText string) (string, error) {
	req := BuildCompletionRequest(s.model, userText, s.inventory.Current())
	return s.completion.Complete(ctx, req)
}
