package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/strandworks/strand/llm"
	"github.com/strandworks/strand/tools"
)

// scriptedProvider returns canned outputs in order and records the tool
// choice of every call.
type scriptedProvider struct {
	outputs []llm.ModelOutput
	err     error
	calls   int
	choices []llm.ToolChoice
}

func (p *scriptedProvider) Name() string  { return "scripted" }
func (p *scriptedProvider) Model() string { return "scripted-1" }

func (p *scriptedProvider) Generate(ctx context.Context, messages []llm.ChatMessage, infos []llm.ToolInfo, choice llm.ToolChoice, config llm.GenerateConfig) (llm.ModelOutput, error) {
	p.choices = append(p.choices, choice)
	if p.err != nil {
		return llm.ModelOutput{}, p.err
	}
	if p.calls >= len(p.outputs) {
		return llm.ModelOutput{}, fmt.Errorf("no scripted output for call %d", p.calls)
	}
	output := p.outputs[p.calls]
	p.calls++
	return output, nil
}

func textOutput(text string) llm.ModelOutput {
	return llm.ModelOutput{
		Choices: []llm.Choice{{Message: llm.AssistantMessage(text), StopReason: "stop"}},
	}
}

func toolCallOutput(calls ...llm.ToolCall) llm.ModelOutput {
	msg := llm.ChatMessage{Role: llm.RoleAssistant, ToolCalls: calls}
	return llm.ModelOutput{
		Choices: []llm.Choice{{Message: msg, StopReason: "tool_calls"}},
	}
}

// testTool is a minimal scriptable tool.
type testTool struct {
	name     string
	bindings map[string]string
	callFn   func(ctx context.Context, args map[string]any) (any, error)
}

func (t *testTool) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{Name: t.name, Description: "test tool"}
}

func (t *testTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if t.callFn == nil {
		return "ok", nil
	}
	return t.callFn(ctx, args)
}

func (t *testTool) MetadataParams() map[string]string {
	return t.bindings
}

func TestGenerateStopsWithoutToolCalls(t *testing.T) {
	provider := &scriptedProvider{outputs: []llm.ModelOutput{textOutput("hello")}}
	state := NewTaskState("hi", nil)

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(state.Messages))
	}
	if state.Messages[1].Role != llm.RoleAssistant {
		t.Errorf("expected assistant reply, got %s", state.Messages[1].Role)
	}
	if state.Output == nil || state.OutputText() != "hello" {
		t.Errorf("expected output set to final message, got %v", state.Output)
	}
}

func TestGenerateDispatchesToolCallsThenStops(t *testing.T) {
	echo := &testTool{name: "echo", callFn: func(ctx context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	}}

	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "echo", Arguments: map[string]any{"text": "ping"}}),
		textOutput("done"),
	}}
	state := NewTaskState("go", []tools.Tool{echo})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// user, assistant(tool call), tool result, assistant(final)
	if len(state.Messages) != 4 {
		t.Fatalf("expected 4 messages, got %d", len(state.Messages))
	}
	result := state.Messages[2]
	if result.Role != llm.RoleTool || result.ToolCallID != "c1" {
		t.Errorf("unexpected tool result: %+v", result)
	}
	if result.Content != "ping" {
		t.Errorf("expected echoed content, got %q", result.Content)
	}
	if result.ToolError != "" {
		t.Errorf("unexpected tool error: %s", result.ToolError)
	}
	if state.OutputText() != "done" {
		t.Errorf("expected final output 'done', got %q", state.OutputText())
	}
}

func TestGenerateMaxMessagesAfterModelReply(t *testing.T) {
	// With a cap of 2 the loop stops right after the first assistant
	// message, even though it carries tool calls; none are dispatched.
	invoked := false
	tool := &testTool{name: "echo", callFn: func(ctx context.Context, args map[string]any) (any, error) {
		invoked = true
		return "ok", nil
	}}

	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "echo"}),
	}}
	state := NewTaskState("go", []tools.Tool{tool})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(state.Messages))
	}
	if invoked {
		t.Error("tool must not be dispatched once the cap is reached")
	}
	if state.Output == nil {
		t.Error("output must be set on the cap exit")
	}
}

func TestGenerateMaxMessagesMidDispatch(t *testing.T) {
	// Two calls in one turn, cap of 3: the first result lands as message 3
	// and the second call is never dispatched.
	var invocations []string
	tool := &testTool{name: "echo", callFn: func(ctx context.Context, args map[string]any) (any, error) {
		invocations = append(invocations, args["text"].(string))
		return "ok", nil
	}}

	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(
			llm.ToolCall{ID: "c1", Function: "echo", Arguments: map[string]any{"text": "first"}},
			llm.ToolCall{ID: "c2", Function: "echo", Arguments: map[string]any{"text": "second"}},
		),
	}}
	state := NewTaskState("go", []tools.Tool{tool})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(state.Messages))
	}
	if len(invocations) != 1 || invocations[0] != "first" {
		t.Errorf("expected only the first call dispatched, got %v", invocations)
	}
	if state.Output == nil {
		t.Error("output must be set when stopping mid-dispatch")
	}
}

func TestGenerateUnboundedWhenMaxMessagesZero(t *testing.T) {
	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "echo", Arguments: map[string]any{"text": "a"}}),
		toolCallOutput(llm.ToolCall{ID: "c2", Function: "echo", Arguments: map[string]any{"text": "b"}}),
		textOutput("final"),
	}}
	echo := &testTool{name: "echo", callFn: func(ctx context.Context, args map[string]any) (any, error) {
		return args["text"], nil
	}}
	state := NewTaskState("go", []tools.Tool{echo})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(state.Messages) != 6 {
		t.Fatalf("expected 6 messages, got %d", len(state.Messages))
	}
	if state.OutputText() != "final" {
		t.Errorf("expected 'final', got %q", state.OutputText())
	}
}

func TestGenerateParseErrorBecomesToolError(t *testing.T) {
	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "echo", ParseError: "unbalanced braces"}),
		textOutput("recovered"),
	}}
	state := NewTaskState("go", []tools.Tool{&testTool{name: "echo"}})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("parse errors must not abort the loop: %v", err)
	}

	result := state.Messages[2]
	if result.ToolError != "unbalanced braces" {
		t.Errorf("expected tool error on result, got %q", result.ToolError)
	}
	if result.Content != "" {
		t.Errorf("expected no content for failed call, got %q", result.Content)
	}
	if state.OutputText() != "recovered" {
		t.Errorf("loop must continue after the failed call, got %q", state.OutputText())
	}
}

func TestGenerateUnknownToolBecomesContent(t *testing.T) {
	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "ghost"}),
		textOutput("ok"),
	}}
	state := NewTaskState("go", nil)

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := state.Messages[2]
	if result.ToolError != "" {
		t.Errorf("unknown tool is not a tool error, got %q", result.ToolError)
	}
	if result.Content != "Tool ghost not found" {
		t.Errorf("unexpected content: %q", result.Content)
	}
}

func TestGenerateMissingBindingSkipsCallable(t *testing.T) {
	invoked := false
	greet := &testTool{
		name:     "greet",
		bindings: map[string]string{"username": "metadata.username"},
		callFn: func(ctx context.Context, args map[string]any) (any, error) {
			invoked = true
			return "hello", nil
		},
	}

	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "greet", Arguments: map[string]any{}}),
		textOutput("ok"),
	}}
	state := NewTaskState("go", []tools.Tool{greet})
	// Metadata intentionally lacks "username".

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("binding failures must not abort the loop: %v", err)
	}
	if invoked {
		t.Error("callable must not run when binding fails")
	}
	result := state.Messages[2]
	if result.ToolError == "" {
		t.Error("expected tool error for missing binding")
	}
}

func TestGenerateBoundParameterFromMetadata(t *testing.T) {
	var seen map[string]any
	greet := &testTool{
		name:     "greet",
		bindings: map[string]string{"username": "metadata.username"},
		callFn: func(ctx context.Context, args map[string]any) (any, error) {
			seen = args
			return fmt.Sprintf("Hello, %v!", args["username"]), nil
		},
	}

	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "greet", Arguments: map[string]any{"username": "mallory"}}),
		textOutput("ok"),
	}}
	state := NewTaskState("go", []tools.Tool{greet})
	state.Metadata["username"] = "alice"

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen["username"] != "alice" {
		t.Errorf("metadata-bound value must win over the model's, got %v", seen["username"])
	}
	if state.Messages[2].Content != "Hello, alice!" {
		t.Errorf("unexpected result content: %q", state.Messages[2].Content)
	}
}

func TestGenerateForcedChoiceRevertsAfterFirstDispatch(t *testing.T) {
	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "echo"}),
		textOutput("done"),
	}}
	state := NewTaskState("go", []tools.Tool{&testTool{name: "echo"}})
	state.ToolChoice = llm.ForceTool("echo")

	_, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(provider.choices) != 2 {
		t.Fatalf("expected 2 model calls, got %d", len(provider.choices))
	}
	if !provider.choices[0].IsForced() || provider.choices[0].Name != "echo" {
		t.Errorf("first call must be forced, got %+v", provider.choices[0])
	}
	if provider.choices[1] != llm.ToolChoiceNone {
		t.Errorf("choice must revert to none after the forced call, got %+v", provider.choices[1])
	}
}

func TestGenerateSequentialMetadataVisibility(t *testing.T) {
	// The first call writes metadata; the second call's bound parameter
	// must see the update within the same turn.
	writer := &testTool{name: "writer", callFn: func(ctx context.Context, args map[string]any) (any, error) {
		return tools.ResultWithUpdate{
			Value:  "stored",
			Update: map[string]any{"token": "s3cret"},
		}, nil
	}}
	var seenToken any
	reader := &testTool{
		name:     "reader",
		bindings: map[string]string{"token": "metadata.token"},
		callFn: func(ctx context.Context, args map[string]any) (any, error) {
			seenToken = args["token"]
			return "read", nil
		},
	}

	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(
			llm.ToolCall{ID: "c1", Function: "writer"},
			llm.ToolCall{ID: "c2", Function: "reader"},
		),
		textOutput("done"),
	}}
	state := NewTaskState("go", []tools.Tool{writer, reader})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seenToken != "s3cret" {
		t.Errorf("second call must observe the first call's update, got %v", seenToken)
	}
	if state.Metadata["token"] != "s3cret" {
		t.Errorf("metadata update lost: %v", state.Metadata)
	}
}

func TestGenerateModelErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: fmt.Errorf("rate limited")}
	state := NewTaskState("go", nil)

	_, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 0)
	if err == nil {
		t.Fatal("expected model error to propagate")
	}
}

func TestGenerateOutputSetOnCapExit(t *testing.T) {
	provider := &scriptedProvider{outputs: []llm.ModelOutput{
		toolCallOutput(llm.ToolCall{ID: "c1", Function: "echo"}),
	}}
	state := NewTaskState("go", []tools.Tool{&testTool{name: "echo"}})

	state, err := Generate(context.Background(), provider, state, llm.GenerateConfig{}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Output == nil {
		t.Fatal("output must be set on every exit")
	}
	if state.Output.Choices[0].StopReason != "tool_calls" {
		t.Errorf("output must be the last model output, got %+v", state.Output)
	}
}
