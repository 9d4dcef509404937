// Package storage provides the SQLite run log: summary records of completed
// conversations and their scores. Message contents are never stored.
//
// Information Hiding:
// - SQLite connection management hidden behind interface
// - Schema details encapsulated
// - Thread-safe via sql.DB's built-in connection pooling
package storage

import "context"

// RunRecord summarizes one completed conversation.
type RunRecord struct {
	RunID            string
	Provider         string
	Model            string
	Input            string
	Output           string
	MessageCount     int
	ToolCallCount    int
	StopReason       string
	PromptTokens     uint32
	CompletionTokens uint32
	CreatedAt        int64
}

// ScoreRecord is one scorer's verdict on a run.
type ScoreRecord struct {
	RunID  string
	Scorer string
	Value  string
	Answer string
	Target string
}

// RunStore persists run summaries and scores.
type RunStore interface {
	SaveRun(ctx context.Context, run RunRecord) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
	SaveScore(ctx context.Context, score ScoreRecord) error
	ScoresForRun(ctx context.Context, runID string) ([]ScoreRecord, error)
	DeleteRun(ctx context.Context, runID string) error
	Close() error
}
