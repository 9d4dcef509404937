// MCP Tool Wrapper - Makes MCP server tools usable in conversations.
//
// Information Hiding:
// - MCP client lifecycle hidden
// - Schema parsing hidden
// - Result content decoding hidden

package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/strandworks/strand/tools"
)

// ToolManager manages a set of MCP tools sharing a single client.
// The caller must call Close() when done to release resources.
type ToolManager struct {
	client *Client
	tools  []tools.Tool
}

// Tools returns the discovered tools.
func (m *ToolManager) Tools() []tools.Tool {
	return m.tools
}

// Close closes the MCP client and releases resources.
func (m *ToolManager) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// DiscoverTools discovers all tools from an MCP server and returns a
// ToolManager. The ToolManager shares a single client across all tools.
// The caller MUST call ToolManager.Close() when done to release resources.
//
// Example:
//
//	manager, err := mcp.DiscoverTools(ctx, "npx", "-y", "@modelcontextprotocol/server-brave-search")
//	if err != nil {
//	    return err
//	}
//	defer manager.Close()
func DiscoverTools(ctx context.Context, serverCommand string, serverArgs ...string) (*ToolManager, error) {
	client, err := NewClient(ctx, serverCommand, serverArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MCP server: %w", err)
	}

	toolInfos, err := client.ListTools(ctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	result := make([]tools.Tool, len(toolInfos))
	for i, info := range toolInfos {
		result[i] = &toolWrapper{
			client:      client,
			toolName:    info.Name,
			description: stringValue(info.Description),
			inputSchema: info.InputSchema,
		}
	}

	return &ToolManager{
		client: client,
		tools:  result,
	}, nil
}

// toolWrapper adapts one MCP server tool to the conversation tool interface
// using the manager's shared client.
type toolWrapper struct {
	client      *Client
	toolName    string
	description string
	inputSchema json.RawMessage
}

// Metadata returns the tool metadata extracted from the MCP schema.
func (w *toolWrapper) Metadata() tools.ToolMetadata {
	return tools.ToolMetadata{
		Name:        w.toolName,
		Description: w.description,
		Parameters:  parseParameters(w.inputSchema),
	}
}

// Call invokes the MCP tool using the shared client.
func (w *toolWrapper) Call(ctx context.Context, args map[string]any) (any, error) {
	result, err := w.client.CallTool(ctx, w.toolName, args)
	if err != nil {
		return nil, fmt.Errorf("tool call failed: %w", err)
	}

	return decodeResult(result), nil
}

// parseParameters extracts tool parameters from the JSON schema.
// Returns parameters in sorted order for deterministic output.
func parseParameters(inputSchema json.RawMessage) []tools.ToolParameter {
	var schema struct {
		Properties map[string]struct {
			Type        string `json:"type"`
			Description string `json:"description"`
		} `json:"properties"`
		Required []string `json:"required"`
	}

	if err := json.Unmarshal(inputSchema, &schema); err != nil {
		return nil
	}

	requiredSet := make(map[string]bool)
	for _, r := range schema.Required {
		requiredSet[r] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	params := make([]tools.ToolParameter, 0, len(names))
	for _, name := range names {
		prop := schema.Properties[name]
		paramType := prop.Type
		if paramType == "" {
			paramType = "string"
		}

		params = append(params, tools.ToolParameter{
			Name:        name,
			Description: prop.Description,
			ParamType:   paramType,
			Required:    requiredSet[name],
		})
	}

	return params
}

// decodeResult converts an MCP tools/call result into tool content. Text
// content blocks become strings (multiple blocks stay a sequence); anything
// else is returned as pretty JSON.
func decodeResult(result json.RawMessage) any {
	var parsed struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}

	if err := json.Unmarshal(result, &parsed); err == nil && len(parsed.Content) > 0 {
		texts := make([]string, 0, len(parsed.Content))
		for _, block := range parsed.Content {
			if block.Type == "text" {
				texts = append(texts, block.Text)
			}
		}
		switch len(texts) {
		case 0:
			// Fall through to raw formatting below
		case 1:
			return texts[0]
		default:
			return texts
		}
	}

	var v interface{}
	if err := json.Unmarshal(result, &v); err != nil {
		return string(result)
	}
	pretty, _ := json.MarshalIndent(v, "", "  ")
	return string(pretty)
}

// stringValue returns empty string for nil pointers.
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
