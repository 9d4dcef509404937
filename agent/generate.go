package agent

import (
	"context"
	"fmt"

	"github.com/strandworks/strand/llm"
	"github.com/strandworks/strand/tools"
)

// Generate runs the conversation loop: invoke the model, append its message,
// dispatch any tool calls in order, and repeat until the model answers
// without tool calls or the message budget is reached.
//
// maxMessages <= 0 means unbounded. The budget is checked after the model
// message is appended and again after each tool result, so a conversation
// can stop mid-dispatch with some calls of the final assistant message left
// unexecuted.
//
// A model failure is the only error Generate returns; tool failures become
// conversation content. On every non-error return state.Output holds the
// most recent model output.
func Generate(ctx context.Context, model llm.Provider, state *TaskState, config llm.GenerateConfig, maxMessages int) (*TaskState, error) {
	choice := state.ToolChoice

	for {
		output, err := model.Generate(ctx, state.Messages, tools.Infos(state.Tools), choice, config)
		if err != nil {
			return nil, fmt.Errorf("model generate failed: %w", err)
		}

		message := output.Message()
		state.Messages = append(state.Messages, message)
		state.Output = &output

		if atMessageLimit(state, maxMessages) {
			return state, nil
		}
		if len(message.ToolCalls) == 0 {
			return state, nil
		}

		for _, call := range message.ToolCalls {
			// Re-resolve per call: a tool execution may have changed what
			// earlier entries in the list expose.
			defs := tools.Resolve(state.Tools)

			content, err := tools.Invoke(ctx, defs, call, state.Metadata)
			var toolErr string
			if err != nil {
				content = nil
				toolErr = err.Error()
			}
			state.Messages = append(state.Messages, llm.ToolMessage(content, call.ID, toolErr))

			if atMessageLimit(state, maxMessages) {
				return state, nil
			}
			if choice.IsForced() {
				choice = llm.ToolChoiceNone
			}
		}
	}
}

// atMessageLimit reports whether the transcript has reached the budget.
func atMessageLimit(state *TaskState, maxMessages int) bool {
	return maxMessages > 0 && len(state.Messages) >= maxMessages
}
