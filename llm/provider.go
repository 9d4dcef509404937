// Model provider interface - the abstract interface for model providers.
// Each provider implementation hides:
// - API client initialization and authentication
// - Request/response format conversion
// - Tool and tool-choice format mapping
// - Provider-specific error handling

package llm

import (
	"context"
)

// Provider defines the abstract interface for model providers.
// Implementations hide provider-specific details while exposing a
// consistent generate operation.
type Provider interface {
	// Name returns the provider name (for logging/debugging).
	Name() string

	// Model returns the current model being used.
	Model() string

	// Generate sends the conversation to the model together with the tool
	// projection and tool choice, and returns the model's output. The first
	// choice's message is the next assistant turn and may include tool calls.
	Generate(ctx context.Context, messages []ChatMessage, tools []ToolInfo, choice ToolChoice, config GenerateConfig) (ModelOutput, error)
}
