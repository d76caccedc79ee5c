package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"bookify-backend/internal/models"
)

const (
	defaultCompletionTimeout = 30 * time.Second
	maxErrorBodyBytes        = 64 << 10
)

// CompletionClient sends chat-completion requests to an OpenAI-compatible API.
type CompletionClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type CompletionOption func(*CompletionClient)

// WithHTTPClient replaces the HTTP client, including its timeout.
func WithHTTPClient(httpClient *http.Client) CompletionOption {
	return func(c *CompletionClient) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each call end to end.
func WithTimeout(timeout time.Duration) CompletionOption {
	return func(c *CompletionClient) {
		c.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewCompletionClient targets baseURL + "/chat/completions" with apiKey as the
// bearer token. An empty key is sent as-is.
func NewCompletionClient(apiKey, baseURL string, opts ...CompletionOption) *CompletionClient {
	c := &CompletionClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultCompletionTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Complete performs exactly one request and returns the first choice's
// content. Failures are *UpstreamError or *TransportError.
func (c *CompletionClient) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	reply, err := c.complete(ctx, req)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			log.Printf("HTTP ERROR: %d - %s", upstream.StatusCode, upstream.Detail)
		} else {
			log.Printf("An unexpected error occurred: %v", err)
		}
		return "", err
	}
	return reply, nil
}

func (c *CompletionClient) complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	// models.ChatMessage always carries "content", even when empty.
	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(req); err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Detail: errorDetail(raw)}
	}

	var envelope models.CompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	content, err := firstContent(envelope)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	return content, nil
}

// firstContent returns choices[0].message.content; any missing step is an error.
func firstContent(envelope models.CompletionResponse) (string, error) {
	if len(envelope.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	msg := envelope.Choices[0].Message
	if msg == nil {
		return "", errors.New("choices[0] has no message")
	}
	if msg.Content == nil {
		return "", errors.New("choices[0].message has no content")
	}
	return *msg.Content, nil
}

// errorDetail prefers the message of an OpenAI-style error envelope and falls
// back to the raw body.
func errorDetail(raw []byte) string {
	var errResp openai.ErrorResponse
	if err := json.Unmarshal(raw, &errResp); err == nil && errResp.Error != nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return string(raw)
}
