// Package llm provides shared data models for model providers.
package llm

import (
	"fmt"
	"strings"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ChatMessage represents a chat message with role and content.
type ChatMessage struct {
	Role         string     `json:"role"`
	Content      string     `json:"content"`
	ContentParts []string   `json:"content_parts,omitempty"` // Set when a tool produced a sequence of parts
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`    // For assistant messages with tool calls
	ToolCallID   string     `json:"tool_call_id,omitempty"`  // For tool result messages
	ToolError    string     `json:"tool_error,omitempty"`    // For tool result messages that failed
}

// Text returns the message content as a single string. Messages carrying
// content parts are joined with newlines.
func (m ChatMessage) Text() string {
	if len(m.ContentParts) > 0 {
		return strings.Join(m.ContentParts, "\n")
	}
	return m.Content
}

// ToolCall represents a tool call emitted by the model.
type ToolCall struct {
	ID         string         `json:"id"`
	Function   string         `json:"function"`
	Arguments  map[string]any `json:"arguments"`
	ParseError string         `json:"parse_error,omitempty"` // Set when the provider failed to parse the call
}

// SystemMessage creates a system message.
func SystemMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Content: content}
}

// UserMessage creates a user message.
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Content: content}
}

// ToolMessage creates a tool result message. Content may be a string, a
// []string (kept as parts), or any other value (formatted). A non-empty
// toolError marks the result as failed.
func ToolMessage(content any, toolCallID, toolError string) ChatMessage {
	msg := ChatMessage{Role: RoleTool, ToolCallID: toolCallID, ToolError: toolError}
	switch v := content.(type) {
	case nil:
	case string:
		msg.Content = v
	case []string:
		msg.ContentParts = v
		msg.Content = strings.Join(v, "\n")
	default:
		msg.Content = fmt.Sprintf("%v", v)
	}
	return msg
}

// ToolChoiceMode governs whether the model may, must not, or must call a tool.
type ToolChoiceMode string

const (
	ToolChoiceModeAuto   ToolChoiceMode = "auto"
	ToolChoiceModeNone   ToolChoiceMode = "none"
	ToolChoiceModeForced ToolChoiceMode = "forced"
)

// ToolChoice constrains the model's next turn with respect to tool calling.
// The zero value behaves as auto.
type ToolChoice struct {
	Mode ToolChoiceMode `json:"mode"`
	Name string         `json:"name,omitempty"` // Tool name when Mode is forced
}

// ToolChoiceAuto lets the model decide whether to call a tool.
var ToolChoiceAuto = ToolChoice{Mode: ToolChoiceModeAuto}

// ToolChoiceNone forbids tool calls on the next turn.
var ToolChoiceNone = ToolChoice{Mode: ToolChoiceModeNone}

// ForceTool requires the model's next turn to call the named tool.
func ForceTool(name string) ToolChoice {
	return ToolChoice{Mode: ToolChoiceModeForced, Name: name}
}

// IsForced reports whether the choice forces a specific tool.
func (c ToolChoice) IsForced() bool {
	return c.Mode == ToolChoiceModeForced
}

// ToolInfo is the provider-facing projection of a resolved tool: name,
// description and parameter schema only, never the callable.
type ToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"` // JSON Schema
}

// GenerateConfig holds per-call generation settings. Zero fields fall back
// to provider defaults.
type GenerateConfig struct {
	MaxTokens   uint32
	Temperature *float32
}

// Choice is a single completion choice in a model output.
type Choice struct {
	Message    ChatMessage
	StopReason string
}

// ModelOutput represents the result of one model generation.
type ModelOutput struct {
	Choices []Choice
	Usage   *TokenUsage
}

// Message returns the message of the first choice, or a zero message when
// the output has no choices.
func (o ModelOutput) Message() ChatMessage {
	if len(o.Choices) == 0 {
		return ChatMessage{}
	}
	return o.Choices[0].Message
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}
