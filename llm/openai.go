// OpenAI provider implementation using the go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for the Chat Completions API
// - Tool and tool-choice format mapping

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	jsonutil "github.com/strandworks/strand/internal/json"
)

// OpenAIProvider implements the Provider interface for OpenAI.
type OpenAIProvider struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the current model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Generate sends a chat completion request with tools and tool choice.
func (p *OpenAIProvider) Generate(ctx context.Context, messages []ChatMessage, tools []ToolInfo, choice ToolChoice, config GenerateConfig) (ModelOutput, error) {
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

// parseOpenAIToolCall decodes a tool call's argument payload. A payload the
// provider cannot decode yields a call with ParseError set instead of an
// error, so the conversation can surface it as a failed tool result.
func parseOpenAIToolCall(id, name, arguments string) ToolCall {
	call := ToolCall{ID: id, Function: name}
	args, err := jsonutil.DecodeArguments(arguments)
	if err != nil {
		call.ParseError = fmt.Sprintf("invalid arguments for %s: %v", name, err)
		return call
	}
	call.Arguments = args
	return call
}

// convertToOpenAIMessages converts ChatMessage values, including assistant
// tool calls and tool result messages, to the go-openai representation.
func convertToOpenAIMessages(messages []ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		oaiMsg := openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Text(),
		}

		for _, tc := range msg.ToolCalls {
			argsJSON, err := json.Marshal(tc.Arguments)
			if err != nil {
				argsJSON = []byte("{}")
			}
			oaiMsg.ToolCalls = append(oaiMsg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Function,
					Arguments: string(argsJSON),
				},
			})
		}

		if msg.ToolCallID != "" {
			oaiMsg.ToolCallID = msg.ToolCallID
			if msg.ToolError != "" {
				oaiMsg.Content = "Error: " + msg.ToolError
			}
		}

		result[i] = oaiMsg
	}
	return result
}

// convertToOpenAITools converts tool infos to OpenAI format.
func convertToOpenAITools(tools []ToolInfo) []openai.Tool {
	result := make([]openai.Tool, len(tools))
	for i, t := range tools {
		result[i] = openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		}
	}
	return result
}

// convertToOpenAIToolChoice maps a ToolChoice to the request field.
func convertToOpenAIToolChoice(choice ToolChoice) any {
	switch choice.Mode {
	case ToolChoiceModeNone:
		return "none"
	case ToolChoiceModeForced:
		return openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: choice.Name},
		}
	default:
		return "auto"
	}
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
