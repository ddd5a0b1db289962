package ai

import (
	"context"
	"errors"

	"google.golang.org/genai"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
	"notegraph-ai/internal/topics"
)

var _ adapter.ChatProvider = (*GeminiProvider)(nil)

// GeminiProvider talks to the generateContent endpoint through the official
// SDK, which carries the API key as a URL query parameter. Assistant
// messages are remapped to the "model" role; everything else is sent as
// "user" (Gemini has no separate system role in history).
type GeminiProvider struct {
	defaultModel string
	baseURL      string // override for tests; empty means the public API
}

func NewGeminiProvider(defaultModel, baseURL string) *GeminiProvider {
	if defaultModel == "" {
		defaultModel = "gemini-2.0-flash"
	}
	return &GeminiProvider{defaultModel: defaultModel, baseURL: baseURL}
}

func (g *GeminiProvider) Name() model.Provider { return model.ProviderGemini }

func (g *GeminiProvider) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: g.baseURL,
		},
	})
}

func (g *GeminiProvider) Chat(ctx context.Context, apiKey, modelName string, messages []adapter.Message) (model.AIResponse, error) {
	if modelName == "" {
		modelName = g.defaultModel
	}

	client, err := g.client(ctx, apiKey)
	if err != nil {
		return model.AIResponse{}, err
	}

	resp, err := client.Models.GenerateContent(
		ctx,
		modelName,
		toGenAIContents(messages),
		&genai.GenerateContentConfig{
			MaxOutputTokens: maxCompletionTokens,
			Temperature:     genai.Ptr[float32](chatTemperature),
		},
	)
	if err != nil {
		var apierr genai.APIError
		if errors.As(err, &apierr) {
			return model.AIResponse{}, &domain.UpstreamError{
				Provider: string(model.ProviderGemini),
				Status:   apierr.Code,
				Msg:      apierr.Message,
			}
		}
		return model.AIResponse{}, err
	}

	// First candidate's first text part; empty when absent.
	content := ""
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		content = resp.Candidates[0].Content.Parts[0].Text
	}

	return model.AIResponse{
		Content:       content,
		RelatedTopics: topics.Extract(content),
		Confidence:    chatConfidence,
	}, nil
}

func (g *GeminiProvider) CountTokens(ctx context.Context, apiKey, modelName string, messages []adapter.Message) (int, error) {
	if modelName == "" {
		modelName = g.defaultModel
	}
	client, err := g.client(ctx, apiKey)
	if err != nil {
		return 0, err
	}
	resp, err := client.Models.CountTokens(ctx, modelName, toGenAIContents(messages), nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func toGenAIContents(messages []adapter.Message) []*genai.Content {
	out := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		role := genai.RoleUser
		if m.Role == "assistant" {
			role = genai.RoleModel
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		})
	}
	return out
}
