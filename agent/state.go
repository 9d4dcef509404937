// Package agent implements the conversation generation loop: repeated model
// invocations with tool-call resolution until the model stops calling tools
// or the message budget is reached.
package agent

import (
	"github.com/strandworks/strand/llm"
	"github.com/strandworks/strand/tools"
)

// TaskState is the mutable state of one conversation, owned exclusively by
// a single Generate call for its lifetime.
type TaskState struct {
	// Messages is the ordered conversation transcript, append-only during
	// the loop.
	Messages []llm.ChatMessage

	// Tools is the list of tool-like objects available to this conversation,
	// fixed for the loop's duration.
	Tools []tools.Tool

	// ToolChoice governs whether/which tool the model must call on its next
	// turn. A forced choice reverts to none after the first dispatched call.
	ToolChoice llm.ToolChoice

	// Metadata is conversation-scoped key/value state; tool executions may
	// merge new pairs into it, and metadata-bound parameters read from it.
	Metadata map[string]any

	// Output is the most recent model output, set exactly once per Generate
	// call on every exit path.
	Output *llm.ModelOutput
}

// NewTaskState creates a conversation state seeded with a user message.
func NewTaskState(input string, ts []tools.Tool) *TaskState {
	return &TaskState{
		Messages:   []llm.ChatMessage{llm.UserMessage(input)},
		Tools:      ts,
		ToolChoice: llm.ToolChoiceAuto,
		Metadata:   map[string]any{},
	}
}

// OutputText returns the text of the final assistant message, or "" when
// the loop has not produced output yet.
func (s *TaskState) OutputText() string {
	if s.Output == nil {
		return ""
	}
	return s.Output.Message().Text()
}
