package narrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
)

// OllamaConfig configures an Ollama chat endpoint.
type OllamaConfig struct {
	// BaseURL is the server root, e.g. http://localhost:11434.
	BaseURL string
	Model   string
	// HTTPClient carries no timeout by default; a narrator call that never
	// returns stalls the turn. Callers wanting a bound inject their own
	// client or cancel the context.
	HTTPClient *http.Client
}

type ollamaClient struct {
	cfg OllamaConfig
}

// NewOllama builds a narrator client backed by a local Ollama server.
func NewOllama(cfg OllamaConfig) (Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("ollama base url is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("ollama model is required")
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &ollamaClient{cfg: cfg}, nil
}

func (c *ollamaClient) Chat(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("chat requires at least one message")
	}

	body := map[string]any{
		"model":    c.cfg.Model,
		"messages": req.Messages,
		"stream":   false,
	}
	if req.ForceJSON {
		body["format"] = "json"
	}
	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUpstreamFailure, "ollama chat request failed", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		errBody, readErr := io.ReadAll(io.LimitReader(res.Body, 4096))
		if readErr != nil {
			return "", apperrors.Wrap(apperrors.CodeUpstreamFailure, "read ollama error body", readErr)
		}
		return "", apperrors.New(apperrors.CodeUpstreamFailure,
			fmt.Sprintf("ollama chat status %d: %s", res.StatusCode, strings.TrimSpace(string(errBody))))
	}

	var payload struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", apperrors.Wrap(apperrors.CodeUpstreamFailure, "decode ollama chat response", err)
	}
	content := strings.TrimSpace(payload.Message.Content)
	if content == "" {
		return "", apperrors.New(apperrors.CodeUpstreamFailure, "ollama chat response missing content")
	}
	return content, nil
}
