package annotator

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
)

// CompletionRequest contains the parameters for one model call.
type CompletionRequest struct {
	Model     string
	System    string
	User      string
	MaxTokens int
}

// Provider abstracts the model behind annotation so tests can substitute a
// fake. Implementations must return the raw completion text.
type Provider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// OpenAIProvider implements Provider using the OpenAI Chat Completions API
// in JSON mode.
type OpenAIProvider struct {
	client *openai.Client
}

// NewOpenAIProvider creates a provider from an API key.
func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 256
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
