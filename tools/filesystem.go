// Filesystem Tools.
//
// Information Hiding:
// - Path resolution and sandboxing hidden
// - Workspace location supplied from conversation metadata, not the model

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ReadFileTool reads a file from the conversation workspace. The workspace
// root comes from conversation metadata, so the model never sees or chooses
// it.
type ReadFileTool struct{}

// NewReadFileTool creates a new read_file tool.
func NewReadFileTool() *ReadFileTool {
	return &ReadFileTool{}
}

// Metadata returns the tool metadata.
func (t *ReadFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "read_file",
		Description: "Read a file from the workspace and return its contents",
		Parameters: []ToolParameter{
			{
				Name:        "path",
				ParamType:   "string",
				Description: "Path of the file, relative to the workspace",
				Required:    true,
			},
		},
	}
}

// MetadataParams declares the workspace root as metadata-sourced.
func (t *ReadFileTool) MetadataParams() map[string]string {
	return map[string]string{"workspace": "metadata.workspace"}
}

// Call reads the file.
func (t *ReadFileTool) Call(ctx context.Context, args map[string]any) (any, error) {
	path, err := workspacePath(args)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

// WriteFileTool writes a file into the conversation workspace. Successful
// writes record the path in conversation metadata under "last_written".
type WriteFileTool struct{}

// NewWriteFileTool creates a new write_file tool.
func NewWriteFileTool() *WriteFileTool {
	return &WriteFileTool{}
}

// Metadata returns the tool metadata.
func (t *WriteFileTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "write_file",
		Description: "Write content to a file in the workspace",
		Parameters: []ToolParameter{
			{
				Name:        "path",
				ParamType:   "string",
				Description: "Path of the file, relative to the workspace",
				Required:    true,
			},
			{
				Name:        "content",
				ParamType:   "string",
				Description: "Content to write",
				Required:    true,
			},
		},
	}
}

// MetadataParams declares the workspace root as metadata-sourced.
func (t *WriteFileTool) MetadataParams() map[string]string {
	return map[string]string{"workspace": "metadata.workspace"}
}

// Call writes the file.
func (t *WriteFileTool) Call(ctx context.Context, args map[string]any) (any, error) {
	path, err := workspacePath(args)
	if err != nil {
		return nil, err
	}

	content, err := stringArg(args, "content")
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write file: %w", err)
	}

	return ResultWithUpdate{
		Value:  fmt.Sprintf("wrote %d bytes to %s", len(content), path),
		Update: map[string]any{"last_written": path},
	}, nil
}

// workspacePath joins the metadata-bound workspace root with the model's
// relative path and rejects escapes.
func workspacePath(args map[string]any) (string, error) {
	workspace, err := requiredStringArg(args, "workspace")
	if err != nil {
		return "", err
	}
	rel, err := requiredStringArg(args, "path")
	if err != nil {
		return "", err
	}

	joined := filepath.Join(workspace, rel)
	root := filepath.Clean(workspace)
	if joined != root && !strings.HasPrefix(joined, root+string(filepath.Separator)) {
		return "", fmt.Errorf("path '%s' escapes the workspace", rel)
	}
	return joined, nil
}
