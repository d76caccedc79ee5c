package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bookify-backend/internal/models"
	"bookify-backend/internal/repository"
	"bookify-backend/internal/services"
)

// newChatHandler wires the real service stack against a simulated completion API.
func newChatHandler(t *testing.T, inventory *repository.InventoryRepo, upstream http.HandlerFunc, opts ...services.CompletionOption) *ChatHandler {
	t.Helper()
	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := services.NewCompletionClient("test-key", server.URL, opts...)
	return NewChatHandler(services.NewChatService(inventory, client, "test-model"))
}

func postChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Chat(rr, req)
	return rr
}

func decodeReply(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}
	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp.Reply
}

func TestChat_Success(t *testing.T) {
	h := newChatHandler(t, repository.NewInventoryRepo("unused.json"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"Room 12 is available."}}]}`))
	})

	reply := decodeReply(t, postChat(t, h, `{"text":"Is room 12 free?"}`))
	if reply != "Room 12 is available." {
		t.Errorf("Expected 'Room 12 is available.', got %q", reply)
	}
}

func TestChat_UpstreamErrorFallback(t *testing.T) {
	h := newChatHandler(t, repository.NewInventoryRepo("unused.json"), func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("upstream exploded"))
	})

	reply := decodeReply(t, postChat(t, h, `{"text":"hello"}`))
	if reply != services.FallbackUpstreamReply {
		t.Errorf("Expected upstream fallback, got %q", reply)
	}
}

func TestChat_TimeoutFallback(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	h := newChatHandler(t, repository.NewInventoryRepo("unused.json"), func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, services.WithTimeout(50*time.Millisecond))

	reply := decodeReply(t, postChat(t, h, `{"text":"hello"}`))
	if reply != services.FallbackUnexpectedReply {
		t.Errorf("Expected unexpected-error fallback, got %q", reply)
	}
}

func TestChat_MissingContentFallback(t *testing.T) {
	h := newChatHandler(t, repository.NewInventoryRepo("unused.json"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	})

	reply := decodeReply(t, postChat(t, h, `{"text":"hello"}`))
	if reply != services.FallbackUnexpectedReply {
		t.Errorf("Expected unexpected-error fallback, got %q", reply)
	}
}

func TestChat_MessageWithoutContentFallback(t *testing.T) {
	h := newChatHandler(t, repository.NewInventoryRepo("unused.json"), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant"}}]}`))
	})

	reply := decodeReply(t, postChat(t, h, `{"text":"hello"}`))
	if reply != services.FallbackUnexpectedReply {
		t.Errorf("Expected unexpected-error fallback, got %q", reply)
	}
}

func TestChat_EmptyAPIKeyUnauthorizedFallback(t *testing.T) {
	var authHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	client := services.NewCompletionClient("", server.URL)
	h := NewChatHandler(services.NewChatService(repository.NewInventoryRepo("unused.json"), client, "m"))

	reply := decodeReply(t, postChat(t, h, `{"text":"hello"}`))
	if reply != services.FallbackUpstreamReply {
		t.Errorf("Expected upstream fallback for a 401, got %q", reply)
	}
	if strings.TrimSpace(authHeader) != "Bearer" {
		t.Errorf("Expected an empty bearer token, got %q", authHeader)
	}
}

func TestChat_ConnectionErrorFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := services.NewCompletionClient("test-key", url)
	h := NewChatHandler(services.NewChatService(repository.NewInventoryRepo("unused.json"), client, "m"))

	reply := decodeReply(t, postChat(t, h, `{"text":"hello"}`))
	if reply != services.FallbackUnexpectedReply {
		t.Errorf("Expected unexpected-error fallback, got %q", reply)
	}
}

func TestChat_OutboundPayloadCarriesInventory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rooms.json")
	if err := os.WriteFile(path, []byte(`{"rooms":[{"number":12,"status":"available"}]}`), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	inventory := repository.NewInventoryRepo(path)
	inventory.Reload()

	var captured models.CompletionRequest
	h := newChatHandler(t, inventory, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured); err != nil {
			t.Errorf("Failed to decode outbound body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	text := `Any "quoted" rooms & <suites>?`
	decodeReply(t, postChat(t, h, mustJSON(t, models.ChatRequest{Text: text})))

	if len(captured.Messages) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Errorf("Unexpected roles: %q, %q", captured.Messages[0].Role, captured.Messages[1].Role)
	}
	if !strings.Contains(captured.Messages[0].Content, `{"rooms":[{"number":12,"status":"available"}]}`) {
		t.Errorf("System message does not carry the inventory: %q", captured.Messages[0].Content)
	}
	if captured.Messages[1].Content != text {
		t.Errorf("Expected user content %q, got %q", text, captured.Messages[1].Content)
	}
}

func TestChat_MissingInventoryStillAnswers(t *testing.T) {
	inventory := repository.NewInventoryRepo(filepath.Join(t.TempDir(), "rooms.json"))
	inventory.Reload()

	var system string
	h := newChatHandler(t, inventory, func(w http.ResponseWriter, r *http.Request) {
		var body models.CompletionRequest
		json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) > 0 {
			system = body.Messages[0].Content
		}
		w.Write([]byte(`{"choices":[{"message":{"content":"No data."}}]}`))
	})

	if reply := decodeReply(t, postChat(t, h, `{"text":"rooms?"}`)); reply != "No data." {
		t.Errorf("Unexpected reply %q", reply)
	}
	if !strings.HasSuffix(system, "Current room data: {}") {
		t.Errorf("Expected empty inventory in system prompt, got %q", system)
	}
}

func TestChat_InvalidBody(t *testing.T) {
	h := NewChatHandler(services.NewChatService(repository.NewInventoryRepo("unused.json"), nil, "m"))

	rr := postChat(t, h, `{"text":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error: %v", err)
	}
	if errResp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR, got %q", errResp.Error.Code)
	}
}

func TestFallbackReply(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"upstream", &services.UpstreamError{StatusCode: 500}, services.FallbackUpstreamReply},
		{"transport", &services.TransportError{Err: io.ErrUnexpectedEOF}, services.FallbackUnexpectedReply},
		{"unknown", io.EOF, services.FallbackUnexpectedReply},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := fallbackReply(tc.err); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	return buf.String()
}
