// DeepSeek provider implementation using the go-openai library.
//
// Information Hiding:
// - Uses the OpenAI-compatible API with a different base URL
// - Supports deepseek-chat and deepseek-reasoner models

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

const deepseekBaseURL = "https://api.deepseek.com/v1"

// DeepSeekProvider implements the Provider interface for DeepSeek.
type DeepSeekProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewDeepSeekProvider creates a new DeepSeek provider.
func NewDeepSeekProvider(apiKey, model string, maxTokens uint32, temperature float32) *DeepSeekProvider {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = deepseekBaseURL

	return &DeepSeekProvider{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the provider name.
func (p *DeepSeekProvider) Name() string {
	return "deepseek"
}

// Model returns the current model.
func (p *DeepSeekProvider) Model() string {
	return p.model
}

// Generate sends a chat completion request with tools and tool choice.
// DeepSeek speaks the OpenAI wire format, so the conversions are shared
// with the OpenAI provider.
func (p *DeepSeekProvider) Generate(ctx context.Context, messages []ChatMessage, tools []ToolInfo, choice ToolChoice, config GenerateConfig) (ModelOutput, error) {
	req := openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    convertToOpenAIMessages(messages),
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
	}
	if config.MaxTokens > 0 {
		req.MaxTokens = int(config.MaxTokens)
	}
	if config.Temperature != nil {
		req.Temperature = *config.Temperature
	}

	if len(tools) > 0 {
		req.Tools = convertToOpenAITools(tools)
		req.ToolChoice = convertToOpenAIToolChoice(choice)
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return ModelOutput{}, fmt.Errorf("chat completion failed: %w", err)
	}

	output := ModelOutput{
		Usage: &TokenUsage{
			PromptTokens:     uint32(resp.Usage.PromptTokens),
			CompletionTokens: uint32(resp.Usage.CompletionTokens),
			TotalTokens:      uint32(resp.Usage.TotalTokens),
		},
	}

	for _, c := range resp.Choices {
		msg := ChatMessage{
			Role:    RoleAssistant,
			Content: c.Message.Content,
		}
		for _, tc := range c.Message.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, parseOpenAIToolCall(tc.ID, tc.Function.Name, tc.Function.Arguments))
		}
		output.Choices = append(output.Choices, Choice{
			Message:    msg,
			StopReason: string(c.FinishReason),
		})
	}

	return output, nil
}

// Verify DeepSeekProvider implements Provider
var _ Provider = (*DeepSeekProvider)(nil)
