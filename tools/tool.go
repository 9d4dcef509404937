// Package tools provides the tool system for conversations: the tool
// interface, catalog resolution, metadata parameter binding, and tool-call
// invocation.
//
// Information Hiding:
// - Tool execution details hidden behind the interface
// - Tool parameters and schemas hidden in implementations
// - Resolution and binding mechanics hidden from the generation loop
package tools

import (
	"context"
	"fmt"
)

// ToolParameter defines a parameter schema for a tool.
type ToolParameter struct {
	Name        string `json:"name"`
	ParamType   string `json:"param_type"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// ToolMetadata describes what a tool does and how to use it.
type ToolMetadata struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ToolParameter `json:"parameters"`
}

// String returns a string representation of the tool metadata.
func (m ToolMetadata) String() string {
	return fmt.Sprintf("%s: %s", m.Name, m.Description)
}

// Tool is the interface that all tools must implement. Anything exposing a
// name, a description, a parameter list and a callable can participate in a
// conversation; resolution (see Resolve) works by capability, not by
// concrete type.
type Tool interface {
	// Metadata returns tool metadata (name, description, parameters).
	Metadata() ToolMetadata

	// Call runs the tool with the given named arguments. The returned value
	// may be a string, a []string, any printable value, or a
	// ResultWithUpdate pairing the value with a metadata update.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// MetadataParams is an optional capability: a tool that declares it pulls
// some of its parameters from conversation metadata instead of from the
// model's arguments. The returned map is parameter name to a reference of
// the form "metadata.<key>".
type MetadataParams interface {
	MetadataParams() map[string]string
}

// ResultWithUpdate pairs a tool's result value with a metadata update to be
// merged into the conversation's metadata (new keys overwrite existing).
type ResultWithUpdate struct {
	Value  any
	Update map[string]any
}
