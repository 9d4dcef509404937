package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// SqliteStore implements RunStore using SQLite.
// Thread-safe: sql.DB handles connection pooling and concurrent access.
type SqliteStore struct {
	db *sql.DB
}

// OpenSqlite opens or creates a SQLite database at the given path.
// Creates parent directories if they don't exist.
func OpenSqlite(path string) (*SqliteStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// NewSqliteInMemory creates an in-memory database (useful for testing).
func NewSqliteInMemory() (*SqliteStore, error) {
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite: %w", err)
	}

	store := &SqliteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SqliteStore) Close() error {
	return s.db.Close()
}

func (s *SqliteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			provider TEXT NOT NULL,
			model TEXT NOT NULL,
			input TEXT NOT NULL,
			output TEXT NOT NULL,
			message_count INTEGER NOT NULL,
			tool_call_count INTEGER NOT NULL,
			stop_reason TEXT,
			prompt_tokens INTEGER NOT NULL DEFAULT 0,
			completion_tokens INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_runs_created
		ON runs(created_at DESC);

		CREATE TABLE IF NOT EXISTS scores (
			run_id TEXT NOT NULL,
			scorer TEXT NOT NULL,
			value TEXT NOT NULL,
			answer TEXT,
			target TEXT,
			FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE,
			PRIMARY KEY (run_id, scorer)
		);
	`

	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun stores a run summary.
func (s *SqliteStore) SaveRun(ctx context.Context, run RunRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs
		(run_id, provider, model, input, output, message_count, tool_call_count, stop_reason, prompt_tokens, completion_tokens, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.Provider,
		run.Model,
		run.Input,
		run.Output,
		run.MessageCount,
		run.ToolCallCount,
		run.StopReason,
		run.PromptTokens,
		run.CompletionTokens,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// GetRun loads a run by ID. Returns nil, nil if not found.
func (s *SqliteStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	var run RunRecord
	var stopReason sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, provider, model, input, output, message_count, tool_call_count, stop_reason, prompt_tokens, completion_tokens, created_at
		FROM runs WHERE run_id = ?`,
		runID).Scan(
		&run.RunID,
		&run.Provider,
		&run.Model,
		&run.Input,
		&run.Output,
		&run.MessageCount,
		&run.ToolCallCount,
		&stopReason,
		&run.PromptTokens,
		&run.CompletionTokens,
		&run.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if stopReason.Valid {
		run.StopReason = stopReason.String
	}
	return &run, nil
}

// ListRuns lists the most recent runs, newest first.
func (s *SqliteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, provider, model, input, output, message_count, tool_call_count, stop_reason, prompt_tokens, completion_tokens, created_at
		FROM runs
		ORDER BY created_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{} // Start with empty slice, not nil
	for rows.Next() {
		var run RunRecord
		var stopReason sql.NullString
		err := rows.Scan(
			&run.RunID,
			&run.Provider,
			&run.Model,
			&run.Input,
			&run.Output,
			&run.MessageCount,
			&run.ToolCallCount,
			&stopReason,
			&run.PromptTokens,
			&run.CompletionTokens,
			&run.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if stopReason.Valid {
			run.StopReason = stopReason.String
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}

	return runs, nil
}

// SaveScore stores a score for a run.
func (s *SqliteStore) SaveScore(ctx context.Context, score ScoreRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scores (run_id, scorer, value, answer, target)
		VALUES (?, ?, ?, ?, ?)`,
		score.RunID,
		score.Scorer,
		score.Value,
		score.Answer,
		score.Target,
	)
	if err != nil {
		return fmt.Errorf("failed to save score: %w", err)
	}
	return nil
}

// ScoresForRun loads all scores recorded for a run.
func (s *SqliteStore) ScoresForRun(ctx context.Context, runID string) ([]ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT run_id, scorer, value, answer, target FROM scores WHERE run_id = ? ORDER BY scorer",
		runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	scores := []ScoreRecord{} // Start with empty slice, not nil
	for rows.Next() {
		var score ScoreRecord
		var answer, target sql.NullString
		if err := rows.Scan(&score.RunID, &score.Scorer, &score.Value, &answer, &target); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		if answer.Valid {
			score.Answer = answer.String
		}
		if target.Valid {
			score.Target = target.String
		}
		scores = append(scores, score)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scores: %w", err)
	}

	return scores, nil
}

// DeleteRun removes a run and its scores.
func (s *SqliteStore) DeleteRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM runs WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM scores WHERE run_id = ?", runID)
	if err != nil {
		return fmt.Errorf("failed to delete run scores: %w", err)
	}
	return nil
}

// Verify SqliteStore implements the interface
var _ RunStore = (*SqliteStore)(nil)
