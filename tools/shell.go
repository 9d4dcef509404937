// Shell Command Executor Tool.
//
// Information Hiding:
// - Shell execution details hidden
// - Command validation hidden
// - Output parsing abstracted

package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ShellTool executes shell commands via sh -c.
type ShellTool struct {
	timeoutSecs     uint64
	allowedCommands []string
}

// NewShellTool creates a new shell tool with the given timeout.
func NewShellTool(timeoutSecs uint64) *ShellTool {
	return &ShellTool{
		timeoutSecs: timeoutSecs,
	}
}

// WithAllowedCommands sets the allowlist for commands.
func (t *ShellTool) WithAllowedCommands(commands []string) *ShellTool {
	t.allowedCommands = commands
	return t
}

// Metadata returns the tool metadata.
func (t *ShellTool) Metadata() ToolMetadata {
	return ToolMetadata{
		Name:        "execute_shell",
		Description: "Execute a shell command and return its output",
		Parameters: []ToolParameter{
			{
				Name:        "command",
				ParamType:   "string",
				Description: "The shell command to execute",
				Required:    true,
			},
		},
	}
}

// Call runs the shell command.
func (t *ShellTool) Call(ctx context.Context, args map[string]any) (any, error) {
	command, err := requiredStringArg(args, "command")
	if err != nil {
		return nil, err
	}

	if !t.isCommandAllowed(command) {
		return nil, fmt.Errorf("command '%s' is not in the allowed list", command)
	}

	timeout := time.Duration(t.timeoutSecs) * time.Second
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	output, err := cmd.CombinedOutput()

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("command timed out after %d seconds", t.timeoutSecs)
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("command failed with exit code %d\noutput: %s",
				exitErr.ExitCode(), string(output))
		}
		return nil, fmt.Errorf("failed to execute command: %w", err)
	}

	return string(output), nil
}

// isCommandAllowed checks if the command is in the allowlist.
func (t *ShellTool) isCommandAllowed(command string) bool {
	if len(t.allowedCommands) == 0 {
		return true
	}

	baseCmd := strings.Fields(command)
	if len(baseCmd) == 0 {
		return false
	}

	for _, allowed := range t.allowedCommands {
		if allowed == baseCmd[0] {
			return true
		}
	}
	return false
}
