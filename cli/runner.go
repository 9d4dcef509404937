// Command execution for CLI commands.
//
// Information Hiding:
// - Command dispatch logic hidden
// - Conversation setup hidden
// - Output formatting hidden

package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/strandworks/strand/agent"
	"github.com/strandworks/strand/config"
	"github.com/strandworks/strand/llm"
	"github.com/strandworks/strand/mcp"
	"github.com/strandworks/strand/scorer"
	"github.com/strandworks/strand/storage"
	"github.com/strandworks/strand/tools"
)

// Options holds CLI execution options.
type Options struct {
	Provider    string
	MaxMessages int
	Workspace   string
	DBPath      string
	ForceTool   string
	Verbose     bool
}

// DefaultOptions returns default CLI options.
func DefaultOptions() Options {
	return Options{
		MaxMessages: 50,
		Workspace:   ".",
		Verbose:     false,
	}
}

// Run executes one conversation: the model converses with the built-in and
// MCP tools until it answers without tool calls or hits the message cap.
func Run(ctx context.Context, input string, mcpServers []string, opts Options) error {
	provider, err := createProvider(opts.Provider)
	if err != nil {
		return err
	}

	settings, err := config.New(opts.Provider)
	if err != nil {
		return err
	}
	if opts.MaxMessages == 0 {
		opts.MaxMessages = settings.Generate.MaxMessages
	}

	conversationTools := defaultTools(settings.Generate.ToolTimeoutSecs)

	for _, server := range mcpServers {
		parts := strings.Fields(server)
		if len(parts) == 0 {
			continue
		}
		manager, err := mcp.DiscoverTools(ctx, parts[0], parts[1:]...)
		if err != nil {
			return fmt.Errorf("MCP server %q: %w", server, err)
		}
		defer manager.Close()
		conversationTools = append(conversationTools, manager.Tools()...)
	}

	state := agent.NewTaskState(input, conversationTools)
	state.Metadata["workspace"] = opts.Workspace
	if opts.ForceTool != "" {
		state.ToolChoice = llm.ForceTool(opts.ForceTool)
	}

	genConfig := llm.GenerateConfig{MaxTokens: settings.LLM.MaxTokens}
	temp := float32(settings.LLM.Temperature)
	genConfig.Temperature = &temp

	fmt.Printf("Running with %s (%s)...\n\n", provider.Name(), provider.Model())

	state, err = agent.Generate(ctx, provider, state, genConfig, opts.MaxMessages)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	if opts.Verbose {
		printTranscript(state.Messages)
	}

	fmt.Printf("%s\n\n", state.OutputText())
	fmt.Printf("(%d messages, %d tool calls)\n", len(state.Messages), countToolCalls(state.Messages))

	return saveRun(ctx, provider, input, state, opts)
}

// Score evaluates a stored run's output against a regex pattern and target
// answers, records the verdict, and prints it.
func Score(ctx context.Context, runID, patternStr string, targets []string, opts Options) error {
	dbPath := runLogPath(opts)
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.GetRun(ctx, runID)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %q not found", runID)
	}

	s, err := scorer.NewPatternScorer(patternStr)
	if err != nil {
		return err
	}

	// Scoring only needs the final output, which the run log preserves.
	output := llm.ModelOutput{
		Choices: []llm.Choice{{Message: llm.AssistantMessage(run.Output)}},
	}
	state := &agent.TaskState{Output: &output}

	score, err := s.Score(state, scorer.Target(targets))
	if err != nil {
		return err
	}

	record := storage.ScoreRecord{
		RunID:  runID,
		Scorer: s.Name(),
		Value:  score.Value,
		Answer: score.Answer,
		Target: strings.Join(targets, ","),
	}
	if err := store.SaveScore(ctx, record); err != nil {
		return err
	}

	if score.Value == scorer.Correct {
		fmt.Printf("CORRECT (answer: %s)\n", score.Answer)
	} else {
		fmt.Println("INCORRECT")
	}
	return nil
}

// ListRuns prints the most recent runs from the run log.
func ListRuns(ctx context.Context, limit int, opts Options) error {
	dbPath := runLogPath(opts)
	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s/%s  %d msgs  %s\n",
			run.RunID, run.Provider, run.Model, run.MessageCount,
			time.Unix(run.CreatedAt, 0).Format(time.RFC3339))
		fmt.Printf("  input:  %s\n", truncate(run.Input, 80))
		fmt.Printf("  output: %s\n", truncate(run.Output, 80))
	}
	return nil
}

// ListTools prints the built-in tools.
func ListTools(verbose bool) {
	defs := tools.Resolve(defaultTools(30))

	fmt.Println("Available tools:")
	fmt.Println()

	for _, def := range defs {
		fmt.Printf("  %s\n", def.Name)
		fmt.Printf("    %s\n", def.Description)

		if verbose && len(def.Parameters) > 0 {
			fmt.Println("    Parameters:")
			for _, param := range def.Parameters {
				req := ""
				if param.Required {
					req = "*"
				}
				fmt.Printf("      %s%s: %s - %s\n", param.Name, req, param.ParamType, param.Description)
			}
		}
		fmt.Println()
	}
}

// defaultTools builds the built-in tool list.
func defaultTools(timeoutSecs uint64) []tools.Tool {
	return []tools.Tool{
		tools.NewReadFileTool(),
		tools.NewWriteFileTool(),
		tools.NewShellTool(timeoutSecs),
		tools.NewHTTPTool(timeoutSecs),
	}
}

// saveRun records the run summary when a run log is configured.
func saveRun(ctx context.Context, provider llm.Provider, input string, state *agent.TaskState, opts Options) error {
	dbPath := runLogPath(opts)
	if dbPath == "" {
		return nil
	}

	store, err := storage.OpenSqlite(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	run := storage.RunRecord{
		RunID:         uuid.NewString(),
		Provider:      provider.Name(),
		Model:         provider.Model(),
		Input:         input,
		Output:        state.OutputText(),
		MessageCount:  len(state.Messages),
		ToolCallCount: countToolCalls(state.Messages),
		CreatedAt:     time.Now().Unix(),
	}
	if state.Output != nil && len(state.Output.Choices) > 0 {
		run.StopReason = state.Output.Choices[0].StopReason
	}
	if state.Output != nil && state.Output.Usage != nil {
		run.PromptTokens = state.Output.Usage.PromptTokens
		run.CompletionTokens = state.Output.Usage.CompletionTokens
	}

	if err := store.SaveRun(ctx, run); err != nil {
		return err
	}
	fmt.Printf("Run saved: %s\n", run.RunID)
	return nil
}

// runLogPath picks the run log location: flag, then environment, then the
// default under the working directory.
func runLogPath(opts Options) string {
	if opts.DBPath != "" {
		return opts.DBPath
	}
	if env := os.Getenv("STRAND_DB_PATH"); env != "" {
		return env
	}
	return ".strand/strand.db"
}

func countToolCalls(messages []llm.ChatMessage) int {
	count := 0
	for _, msg := range messages {
		count += len(msg.ToolCalls)
	}
	return count
}

func printTranscript(messages []llm.ChatMessage) {
	for i, msg := range messages {
		fmt.Printf("--- [%d] %s\n", i, msg.Role)
		if text := msg.Text(); text != "" {
			fmt.Println(truncate(text, 400))
		}
		for _, call := range msg.ToolCalls {
			fmt.Printf("  -> %s(%v)\n", call.Function, call.Arguments)
		}
		if msg.ToolError != "" {
			fmt.Printf("  tool error: %s\n", msg.ToolError)
		}
	}
	fmt.Println()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func createProvider(providerName string) (llm.Provider, error) {
	if providerName == "" {
		return nil, fmt.Errorf("--provider is required for this command")
	}

	providerType, err := llm.ParseProviderType(providerName)
	if err != nil {
		return nil, err
	}

	settings, err := config.New(providerName)
	if err != nil {
		return nil, err
	}

	apiKey, err := config.APIKeyFor(providerName)
	if err != nil {
		return nil, err
	}

	return providerType.
		Model(settings.LLM.Model).
		MaxTokens(settings.LLM.MaxTokens).
		Temperature(float32(settings.LLM.Temperature)).
		APIKey(apiKey)
}
