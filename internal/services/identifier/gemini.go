package identifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/phambaophuc/ecovision/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiRecognizer is a thin wrapper around the official genai client.
type GeminiRecognizer struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

func NewGeminiRecognizer(ctx context.Context, apiKey, model string, logger *zap.Logger) (*GeminiRecognizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiRecognizer{client: client, model: model, logger: logger}, nil
}

func (g *GeminiRecognizer) Name() string { return "gemini:" + g.model }

func (g *GeminiRecognizer) Recognize(ctx context.Context, img Image) (models.IdentificationResult, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(identifyPrompt),
			genai.NewPartFromBytes(img.Data, img.MIMEType),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   resultSchema(),
	})
	if err != nil {
		return models.IdentificationResult{}, fmt.Errorf("%w: %v", ErrRecognition, err)
	}

	text := stripCodeFence(resp.Text())
	if text == "" {
		return models.IdentificationResult{}, fmt.Errorf("%w: empty response", ErrRecognition)
	}

	result, err := models.DecodeIdentificationResult([]byte(text))
	if err != nil {
		g.logger.Warn("Recognizer returned unexpected JSON",
			zap.String("model", g.model),
			zap.String("body", truncate(text, 512)),
		)
		return models.IdentificationResult{}, fmt.Errorf("%w: %w", ErrRecognition, err)
	}

	return result, nil
}

// stripCodeFence removes a ```json fence some models wrap around JSON.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
