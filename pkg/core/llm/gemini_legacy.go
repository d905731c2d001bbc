package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	legacy "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// LegacyGeminiProvider talks to Gemini through the older generative-ai-go SDK.
// It has no typed response schema; JSON mode plus the schema described in the
// prompt is what keeps the output in shape.
type LegacyGeminiProvider struct {
	APIKey string
	Model  string
}

var _ Provider = (*LegacyGeminiProvider)(nil)

func (p *LegacyGeminiProvider) Name() string { return "gemini-legacy" }

func (p *LegacyGeminiProvider) GenerateResponse(ctx context.Context, req *Request) (string, error) {
	apiKey := firstNonEmpty(p.APIKey, os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := legacy.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(firstNonEmpty(req.Model, p.Model, defaultGeminiModel))
	if req.Temperature != nil {
		model.SetTemperature(*req.Temperature)
	}
	if req.JSON || req.ResponseSchema != nil {
		model.ResponseMIMEType = "application/json"
	}
	if req.SystemPrompt != "" {
		model.SystemInstruction = &legacy.Content{
			Parts: []legacy.Part{legacy.Text(req.SystemPrompt)},
		}
	}

	parts := []legacy.Part{legacy.Text(req.Prompt)}
	for _, img := range req.Images {
		parts = append(parts, legacy.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(legacy.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}
