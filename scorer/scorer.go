// Package scorer evaluates completed conversations against expected targets.
package scorer

import "github.com/strandworks/strand/agent"

// Score values.
const (
	Correct   = "C"
	Incorrect = "I"
)

// Target is the set of acceptable answers for a conversation.
type Target []string

// Score is the result of scoring one conversation.
type Score struct {
	// Value is Correct or Incorrect.
	Value string

	// Answer is the extracted answer that matched, if any.
	Answer string
}

// Scorer evaluates a finished conversation against a target.
type Scorer interface {
	// Name identifies the scorer in logs and stored results.
	Name() string

	// Score evaluates the conversation's final output.
	Score(state *agent.TaskState, target Target) (Score, error)
}
