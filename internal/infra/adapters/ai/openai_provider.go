package ai

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/pkoukk/tiktoken-go"

	"notegraph-ai/internal/domain"
	"notegraph-ai/internal/domain/model"
	"notegraph-ai/internal/domain/ports/adapter"
	"notegraph-ai/internal/topics"
)

// Compile-time assurance this provider satisfies the port
var _ adapter.ChatProvider = (*OpenAIProvider)(nil)

const (
	maxCompletionTokens = 1000
	chatTemperature     = 0.7

	// Confidence reported for every successful chat; the providers do not
	// score their own output.
	chatConfidence = 0.8
)

// OpenAIProvider talks to the Chat Completions API. One round trip per
// call, key and model supplied per call from the user's service config.
type OpenAIProvider struct {
	defaultModel string
}

func NewOpenAIProvider(defaultModel string) *OpenAIProvider {
	if defaultModel == "" {
		defaultModel = "gpt-4o-mini"
	}
	return &OpenAIProvider{defaultModel: defaultModel}
}

func (o *OpenAIProvider) Name() model.Provider { return model.ProviderOpenAI }

func (o *OpenAIProvider) Chat(ctx context.Context, apiKey, modelName string, messages []adapter.Message) (model.AIResponse, error) {
	if modelName == "" {
		modelName = o.defaultModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(modelName),
		Messages:    toOpenAIMessages(messages),
		MaxTokens:   openai.Int(maxCompletionTokens),
		Temperature: openai.Float(chatTemperature),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apierr *openai.Error
		if errors.As(err, &apierr) {
			return model.AIResponse{}, &domain.UpstreamError{
				Provider: string(model.ProviderOpenAI),
				Status:   apierr.StatusCode,
				Msg:      apierr.Message,
			}
		}
		return model.AIResponse{}, err
	}

	// Empty content when the reply carries no choices; that is not an error
	// at this layer.
	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return model.AIResponse{
		Content:       content,
		RelatedTopics: topics.Extract(content),
		Confidence:    chatConfidence,
	}, nil
}

// CountTokens counts prompt tokens locally with tiktoken; no network call.
func (o *OpenAIProvider) CountTokens(_ context.Context, _, modelName string, messages []adapter.Message) (int, error) {
	if modelName == "" {
		modelName = o.defaultModel
	}
	enc, err := tiktoken.EncodingForModel(modelName)
	if err != nil {
		// Unknown model names fall back to the encoding current chat
		// models share.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return 0, err
		}
	}
	n := 0
	for _, m := range messages {
		n += len(enc.Encode(m.Content, nil, nil))
	}
	return n, nil
}

func toOpenAIMessages(messages []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
