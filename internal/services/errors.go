package services

import "fmt"

// Fallback replies shown to the user in place of a model answer.
const (
	FallbackUpstreamReply   = "Sorry, I received an error from the AI service. Please check the terminal for details."
	FallbackUnexpectedReply = "An unexpected error occurred. Please check the server logs."
)

// UpstreamError means the completion API answered with a non-success status.
type UpstreamError struct {
	StatusCode int
	Detail     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion API returned status %d: %s", e.StatusCode, e.Detail)
}

// TransportError covers everything else: network failure, timeout, or a
// response body without choices[0].message.content.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion request failed: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
