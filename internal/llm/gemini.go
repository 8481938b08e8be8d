package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey string, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &GeminiClient{
		client: client,
		model:  model,
	}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	model := c.client.GenerativeModel(c.model)
	temp := req.Temperature
	model.Temperature = &temp
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}

	// Gemini has no role-tagged chat request on this path; flatten the
	// conversation into one prompt.
	var sb strings.Builder
	for _, m := range req.Messages {
		sb.WriteString(m.Content)
		sb.WriteString("\n\n")
	}

	resp, err := model.GenerateContent(ctx, genai.Text(sb.String()))
	if err != nil {
		return "", err
	}

	return textFromResponse(resp)
}

// textFromResponse pulls the first text part out of a response. A
// safety-blocked request still returns a candidate, with nil Content or no
// Parts, so every level is checked before indexing.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) > 0 {
		content := resp.Candidates[0].Content
		if content != nil && len(content.Parts) > 0 {
			if txt, ok := content.Parts[0].(genai.Text); ok {
				return string(txt), nil
			}
		}
	}

	return "", fmt.Errorf("no response candidates or content")
}
