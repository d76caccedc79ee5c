package services

import (
	"bytes"
	"encoding/json"
	"fmt"

	"bookify-backend/internal/models"
	"bookify-backend/internal/repository"
)

const systemPromptTemplate = `You are a helpful hotel booking assistant for a hotel named 'Bookify'.
Your only job is to answer questions based on the user's query and the provided JSON data about available rooms.
Keep your answers concise and friendly.
Current room data: %s`

// BuildCompletionRequest pairs the Bookify system prompt, carrying the whole
// inventory document, with the user's text. Nothing is validated or trimmed.
func BuildCompletionRequest(model, userText string, doc *repository.Document) models.CompletionRequest {
	return models.CompletionRequest{
		Model: model,
		Messages: []models.ChatMessage{
			{Role: models.RoleSystem, Content: fmt.Sprintf(systemPromptTemplate, serializeDocument(doc))},
			{Role: models.RoleUser, Content: userText},
		},
	}
}

func serializeDocument(doc *repository.Document) string {
	if doc == nil {
		doc = repository.EmptyDocument()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc.Root()); err != nil {
		return "{}"
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
