package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	apperrors "github.com/fableforge/fableforge/internal/platform/errors"
)

// GeminiClient is a narrator backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini-backed narrator. Callers own Close.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("gemini model is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Chat sends the transcript as a Gemini chat session. The last message is
// the live prompt; everything before it becomes session history.
func (c *GeminiClient) Chat(ctx context.Context, req Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", fmt.Errorf("chat requires at least one message")
	}

	model := c.client.GenerativeModel(c.model)
	if req.ForceJSON {
		model.ResponseMIMEType = "application/json"
	}

	session := model.StartChat()
	for _, msg := range req.Messages[:len(req.Messages)-1] {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}

	last := req.Messages[len(req.Messages)-1]
	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeUpstreamFailure, "gemini chat request failed", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", apperrors.New(apperrors.CodeUpstreamFailure, "gemini chat response missing content")
	}

	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	content := strings.TrimSpace(out.String())
	if content == "" {
		return "", apperrors.New(apperrors.CodeUpstreamFailure, "gemini chat response missing text parts")
	}
	return content, nil
}

// geminiRole maps transcript roles onto the two roles Gemini accepts.
func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}
