package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkcmoris/onedrive-ai-organizer/internal/state"
)

func chatServer(t *testing.T, content string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if seen != nil {
			_ = json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "llama3.1:8b",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIAdvisor_Suggest(t *testing.T) {
	var seen openai.ChatCompletionRequest
	content := ` {"suggestedName": "Invoice_2024-03-01.pdf", "suggestedFolder": "Finance/Invoices/2024", "confidence": 0.9, "reason": "dated invoice"} `
	srv := chatServer(t, content, &seen)

	a := NewOpenAI(OpenAIConfig{
		BaseURL:     srv.URL + "/v1/",
		APIKey:      "ollama",
		Model:       "llama3.1:8b",
		Temperature: 0.2,
		Timeout:     5 * time.Second,
		Fallback:    "_ToSort",
	})

	raw, err := a.Suggest(context.Background(), Request{
		OriginalFilename: "invoice_2024_03.pdf",
		Extension:        ".pdf",
		Kind:             state.KindPDF,
		ContentPreview:   "Invoice #123 dated 2024-03-01",
		AllowedFolders:   []string{"Finance/Invoices/2024"},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"suggestedName": "Invoice_2024-03-01.pdf", "suggestedFolder": "Finance/Invoices/2024", "confidence": 0.9, "reason": "dated invoice"}`, raw)

	assert.Equal(t, "llama3.1:8b", seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, seen.Messages[0].Role)
	assert.Equal(t, SystemPrompt, seen.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, seen.Messages[1].Role)
	assert.Contains(t, seen.Messages[1].Content, "invoice_2024_03.pdf")
	assert.InDelta(t, 0.2, seen.Temperature, 1e-6)
}

func TestOpenAIAdvisor_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "model not loaded"}}`, http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	a := NewOpenAI(OpenAIConfig{BaseURL: srv.URL + "/v1", Model: "m", Timeout: 5 * time.Second})

	_, err := a.Suggest(context.Background(), Request{OriginalFilename: "a.txt"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderUnavailable), "error = %v", err)
}

func TestOpenAIAdvisor_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	a := NewOpenAI(OpenAIConfig{BaseURL: url + "/v1", Model: "m", Timeout: 2 * time.Second})

	_, err := a.Suggest(context.Background(), Request{OriginalFilename: "a.txt"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestFake(t *testing.T) {
	f := NewFake()
	f.Default = "default"
	f.SetResponse("a.txt", "A")
	f.SetError("b.txt", ErrProviderUnavailable)

	got, err := f.Suggest(context.Background(), Request{OriginalFilename: "a.txt"})
	require.NoError(t, err)
	assert.Equal(t, "A", got)

	_, err = f.Suggest(context.Background(), Request{OriginalFilename: "b.txt"})
	assert.ErrorIs(t, err, ErrProviderUnavailable)

	got, err = f.Suggest(context.Background(), Request{OriginalFilename: "c.txt"})
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	assert.Len(t, f.Calls(), 3)
}
