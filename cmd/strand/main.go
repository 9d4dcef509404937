// Package main provides the strand CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/strandworks/strand/cli"
)

var version = "0.1.0"

var (
	// Global flags
	provider    string
	maxMessages int
	dbPath      string
	verbose     bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "strand",
		Short: "Tool-calling LLM conversations with scoring",
		Long: `A CLI tool for running single tool-calling LLM conversations.

The model converses with built-in tools (filesystem, shell, HTTP) and any
configured MCP servers until it answers without tool calls or the message
cap is reached. Completed runs can be scored against expected answers.`,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().IntVarP(&maxMessages, "max-messages", "m", 0, "Maximum conversation messages (0 = use GENERATE_MAX_MESSAGES)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Run log database path (default .strand/strand.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	// Add commands
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(runsCmd())
	rootCmd.AddCommand(toolsCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var workspace string
	var forceTool string
	var mcpServers []string

	cmd := &cobra.Command{
		Use:   "run [input]",
		Short: "Run one tool-calling conversation",
		Long: `Run one conversation from the given input.

The model may call the built-in filesystem, shell and HTTP tools, plus any
tools discovered from MCP servers given with --mcp. The conversation ends
when the model answers without tool calls or the message cap is reached.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:    provider,
				MaxMessages: maxMessages,
				Workspace:   workspace,
				DBPath:      dbPath,
				ForceTool:   forceTool,
				Verbose:     verbose,
			}
			return cli.Run(context.Background(), args[0], mcpServers, opts)
		},
	}

	cmd.Flags().StringVarP(&workspace, "workspace", "w", ".", "Workspace directory for filesystem tools")
	cmd.Flags().StringVar(&forceTool, "force-tool", "", "Force the model's first turn to call the named tool")
	cmd.Flags().StringArrayVar(&mcpServers, "mcp", nil, "MCP server command (repeatable)")

	return cmd
}

func scoreCmd() *cobra.Command {
	var pattern string
	var targets []string

	cmd := &cobra.Command{
		Use:   "score [run-id]",
		Short: "Score a recorded run against expected answers",
		Long: `Score a recorded run's final output.

The pattern's capture groups are the candidate answers; a group that equals
one of the --target values scores CORRECT.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{Provider: provider, DBPath: dbPath, Verbose: verbose}
			return cli.Score(context.Background(), args[0], pattern, targets, opts)
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", `ANSWER:\s*(\S+)`, "Regex pattern extracting candidate answers")
	cmd.Flags().StringSliceVarP(&targets, "target", "t", nil, "Expected answer (repeatable)")
	_ = cmd.MarkFlagRequired("target")

	return cmd
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{DBPath: dbPath, Verbose: verbose}
			return cli.ListRuns(context.Background(), limit, opts)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")

	return cmd
}

func toolsCmd() *cobra.Command {
	var verboseTools bool

	cmd := &cobra.Command{
		Use:   "tools",
		Short: "List available tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cli.ListTools(verboseTools)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verboseTools, "verbose", "V", false, "Show tool parameters")

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("strand " + version)
		},
	}
}
