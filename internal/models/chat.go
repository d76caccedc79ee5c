package models

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is a single role-tagged message sent to the completion API.
type ChatMessage struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Text string `json:"text"`
}

// ChatResponse is the reply returned to the widget.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// CompletionRequest is the body of one outbound chat-completion call.
type CompletionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// CompletionResponse is the API envelope. Pointers distinguish an absent
// message or content from an empty one.
type CompletionResponse struct {
	Choices []CompletionChoice `json:"choices"`
}

type CompletionChoice struct {
	Message *CompletionMessage `json:"message"`
}

type CompletionMessage struct {
	Role    string  `json:"role"`
	Content *string `json:"content"`
}
