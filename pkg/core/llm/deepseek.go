package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

const deepSeekURL = "https://api.deepseek.com/chat/completions"

// DeepSeekProvider speaks the OpenAI-compatible chat completions API.
// It is text-only; image attachments are dropped.
type DeepSeekProvider struct {
	APIKey  string
	Model   string
	BaseURL string
	Client  *http.Client
}

var _ Provider = (*DeepSeekProvider)(nil)

type DeepSeekRequest struct {
	Messages         []Message      `json:"messages"`
	Model            string         `json:"model"`
	Thinking         *ThinkingParam `json:"thinking,omitempty"`
	FrequencyPenalty float64        `json:"frequency_penalty"`
	MaxTokens        int            `json:"max_tokens"`
	PresencePenalty  float64        `json:"presence_penalty"`
	ResponseFormat   ResponseFormat `json:"response_format"`
	Stream           bool           `json:"stream"`
	Temperature      float64        `json:"temperature"`
	TopP             float64        `json:"top_p"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ThinkingParam struct {
	Type string `json:"type"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type DeepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) Name() string { return "deepseek" }

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, req *Request) (string, error) {
	apiKey := firstNonEmpty(p.APIKey, os.Getenv("DEEPSEEK_API_KEY"))
	if apiKey == "" {
		return "", fmt.Errorf("DEEPSEEK_API_KEY_MISSING: Please set DEEPSEEK_API_KEY env var")
	}

	reqBody := DeepSeekRequest{
		Messages:       chatMessages(req),
		Model:          firstNonEmpty(req.Model, p.Model, "deepseek-chat"),
		Thinking:       &ThinkingParam{Type: "disabled"},
		MaxTokens:      8192,
		ResponseFormat: ResponseFormat{Type: "text"},
		Temperature:    1.0,
		TopP:           1.0,
	}
	if req.JSON || req.ResponseSchema != nil {
		reqBody.ResponseFormat.Type = "json_object"
	}
	if req.Temperature != nil {
		reqBody.Temperature = float64(*req.Temperature)
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_MARSHAL_ERROR: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, firstNonEmpty(p.BaseURL, deepSeekURL), bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_REQ_CREATE_ERROR: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+apiKey)

	res, err := httpClient(p.Client).Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_API_CALL_ERROR: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_READ_BODY_ERROR: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DEEPSEEK_API_ERROR: status=%d body=%s", res.StatusCode, string(body))
	}

	var response DeepSeekResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("DEEPSEEK_UNMARSHAL_ERROR: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("DEEPSEEK_NO_CHOICES: %s", string(body))
	}
	return response.Choices[0].Message.Content, nil
}

// chatMessages builds the system/user pair shared by the chat-style providers.
// A text-only backend cannot see images, so the user turn says how many were left out.
func chatMessages(req *Request) []Message {
	var msgs []Message
	if req.SystemPrompt != "" {
		msgs = append(msgs, Message{Content: req.SystemPrompt, Role: "system"})
	}
	prompt := req.Prompt
	if n := len(req.Images); n > 0 {
		prompt += fmt.Sprintf("\n\n(%d screenshot(s) were attached but this model cannot read images.)", n)
	}
	return append(msgs, Message{Content: prompt, Role: "user"})
}

func httpClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}
