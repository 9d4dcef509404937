// Anthropic provider implementation using the official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request/response format for the Anthropic Messages API
// - Tool and tool-choice format mapping

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	jsonutil "github.com/strandworks/strand/internal/json"
)

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model string, maxTokens uint32, temperature float32) *AnthropicProvider {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)

	return &AnthropicProvider{
		client:      client,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: float64(temperature),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Generate sends a messages request with tools and tool choice.
func (p *AnthropicProvider) Generate(ctx context.Context, messages []ChatMessage, tools []ToolInfo, choice ToolChoice, config GenerateConfig) (ModelOutput, error) {
	anthropicMessages, systemPrompt := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   p.maxTokens,
		Messages:    anthropicMessages,
		Temperature: anthropic.Float(p.temperature),
	}
	if config.MaxTokens > 0 {
		params.MaxTokens = int64(config.MaxTokens)
	}
	if config.Temperature != nil {
		params.Temperature = anthropic.Float(float64(*config.Temperature))
	}

	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	if len(tools) > 0 {
		params.Tools = convertToAnthropicTools(tools)
		params.ToolChoice = convertToAnthropicToolChoice(choice)
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return ModelOutput{}, fmt.Errorf("messages request failed: %w", err)
	}

	msg := ChatMessage{Role: RoleAssistant}
	for _, block := range message.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			msg.Content += variant.Text
		case anthropic.ToolUseBlock:
			msg.ToolCalls = append(msg.ToolCalls, parseAnthropicToolUse(variant))
		}
	}

	var usage *TokenUsage
	if message.Usage.InputTokens > 0 || message.Usage.OutputTokens > 0 {
		usage = &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		}
	}

	return ModelOutput{
		Choices: []Choice{{
			Message:    msg,
			StopReason: string(message.StopReason),
		}},
		Usage: usage,
	}, nil
}

// parseAnthropicToolUse converts a tool_use block to a ToolCall. Input that
// is not a JSON object becomes a parse error on the call.
func parseAnthropicToolUse(block anthropic.ToolUseBlock) ToolCall {
	call := ToolCall{ID: block.ID, Function: block.Name}

	raw, err := json.Marshal(block.Input)
	if err != nil {
		call.ParseError = fmt.Sprintf("invalid arguments for %s: %v", block.Name, err)
		return call
	}
	args, err := jsonutil.DecodeArguments(string(raw))
	if err != nil {
		call.ParseError = fmt.Sprintf("invalid arguments for %s: %v", block.Name, err)
		return call
	}
	call.Arguments = args
	return call
}

// convertToAnthropicMessages converts ChatMessage values, including
// assistant tool calls and tool results, to Anthropic message params.
// The system message is extracted and returned separately.
func convertToAnthropicMessages(messages []ChatMessage) ([]anthropic.MessageParam, string) {
	var anthropicMessages []anthropic.MessageParam
	var systemPrompt string

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemPrompt = msg.Content
		case RoleUser:
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewTextBlock(msg.Content),
			))
		case RoleAssistant:
			if len(msg.ToolCalls) > 0 {
				content := anthropic.MessageParam{
					Role: anthropic.MessageParamRoleAssistant,
				}
				if msg.Content != "" {
					content.Content = append(content.Content, anthropic.NewTextBlock(msg.Content))
				}
				for _, tc := range msg.ToolCalls {
					input := tc.Arguments
					if input == nil {
						input = map[string]any{}
					}
					content.Content = append(content.Content, anthropic.ContentBlockParamUnion{
						OfToolUse: &anthropic.ToolUseBlockParam{
							ID:    tc.ID,
							Name:  tc.Function,
							Input: input,
						},
					})
				}
				anthropicMessages = append(anthropicMessages, content)
			} else {
				anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(
					anthropic.NewTextBlock(msg.Content),
				))
			}
		case RoleTool:
			isError := msg.ToolError != ""
			content := msg.Text()
			if isError {
				content = msg.ToolError
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(
				anthropic.NewToolResultBlock(msg.ToolCallID, content, isError),
			))
		}
	}

	return anthropicMessages, systemPrompt
}

// convertToAnthropicTools converts tool infos to Anthropic format.
func convertToAnthropicTools(tools []ToolInfo) []anthropic.ToolUnionParam {
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		properties, _ := t.Parameters["properties"].(map[string]any)
		required, _ := t.Parameters["required"].([]string)

		toolParam := anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: anthropic.ToolInputSchemaParam{
				Properties: properties,
				Required:   required,
			},
		}
		result[i] = anthropic.ToolUnionParam{OfTool: &toolParam}
	}
	return result
}

// convertToAnthropicToolChoice maps a ToolChoice to the union param.
func convertToAnthropicToolChoice(choice ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice.Mode {
	case ToolChoiceModeNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	case ToolChoiceModeForced:
		return anthropic.ToolChoiceUnionParam{OfTool: &anthropic.ToolChoiceToolParam{Name: choice.Name}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
