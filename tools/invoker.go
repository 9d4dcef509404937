// Tool call invocation.
//
// The invoker converts tool failures into conversation content instead of
// propagating them: only a structurally broken call (parse error) or a
// missing metadata binding is a true error, and even those surface as a
// tool_error-flagged message rather than aborting the conversation.

package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/strandworks/strand/llm"
)

// ToolCallError is the only error Invoke returns: the call could not be
// dispatched at all, either because the model producer failed to parse it
// or because a declared metadata binding could not be resolved. It becomes
// the tool_error of the resulting tool message.
type ToolCallError struct {
	Reason string
	cause  error
}

func (e *ToolCallError) Error() string {
	return e.Reason
}

func (e *ToolCallError) Unwrap() error {
	return e.cause
}

// Invoke executes a single tool call against a resolved catalog and returns
// the content for the tool result message.
//
// Checks run in order, each terminal:
//  1. A call with a parse error fails with a *ToolCallError.
//  2. An unknown tool name succeeds with "not found" content, so the model
//     can self-correct.
//  3. A metadata binding failure fails with a *ToolCallError.
//  4. Bound arguments are merged over the model's arguments (bound wins)
//     and the callable runs.
//  5. A callable failure succeeds with "Error: <msg>" content.
//  6. A ResultWithUpdate return merges its update into metadata (new keys
//     overwrite) and yields its value.
//
// Invoke may mutate metadata (step 6); it never mutates the call or defs.
func Invoke(ctx context.Context, defs []Def, call llm.ToolCall, metadata map[string]any) (any, error) {
	if call.ParseError != "" {
		return nil, &ToolCallError{Reason: call.ParseError}
	}

	def, ok := lookup(defs, call.Function)
	if !ok {
		return fmt.Sprintf("Tool %s not found", call.Function), nil
	}

	bound, err := BindParams(def.MetadataParams, metadata)
	if err != nil {
		var bindErr *BindingError
		if errors.As(err, &bindErr) {
			return nil, &ToolCallError{Reason: bindErr.Error(), cause: bindErr}
		}
		return nil, &ToolCallError{Reason: err.Error(), cause: err}
	}

	args := make(map[string]any, len(call.Arguments)+len(bound))
	for name, value := range call.Arguments {
		args[name] = value
	}
	for name, value := range bound {
		args[name] = value
	}

	value, err := def.call(ctx, args)
	if err != nil {
		return "Error: " + err.Error(), nil
	}

	if pair, ok := value.(ResultWithUpdate); ok {
		for key, v := range pair.Update {
			metadata[key] = v
		}
		value = pair.Value
	}

	return value, nil
}

// lookup finds a definition by name.
func lookup(defs []Def, name string) (Def, bool) {
	for _, def := range defs {
		if def.Name == name {
			return def, true
		}
	}
	return Def{}, false
}
