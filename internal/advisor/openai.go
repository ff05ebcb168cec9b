package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIConfig configures an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	BaseURL         string
	APIKey          string
	Model           string
	Temperature     float32
	Timeout         time.Duration
	Fallback        string
	MaxPreviewChars int
}

// OpenAIAdvisor calls a chat completion endpoint, such as the one Ollama
// serves under /v1.
type OpenAIAdvisor struct {
	api *openai.Client
	cfg OpenAIConfig
}

// NewOpenAI creates an OpenAIAdvisor.
func NewOpenAI(cfg OpenAIConfig) *OpenAIAdvisor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &OpenAIAdvisor{
		api: openai.NewClientWithConfig(clientCfg),
		cfg: cfg,
	}
}

// Suggest sends one request and returns the first choice's content. An
// empty choice list yields an empty response, which normalizes to the
// fallback suggestion.
func (a *OpenAIAdvisor) Suggest(ctx context.Context, req Request) (string, error) {
	prompt, err := BuildPrompt(req, a.cfg.Fallback, a.cfg.MaxPreviewChars)
	if err != nil {
		return "", err
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := a.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.Debug("advisor request failed",
			"model", a.cfg.Model,
			"file", req.OriginalFilename,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}

	slog.Debug("advisor request completed",
		"model", a.cfg.Model,
		"file", req.OriginalFilename,
		"duration_ms", time.Since(start).Milliseconds())

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
