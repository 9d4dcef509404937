package scorer

import (
	"testing"

	"github.com/strandworks/strand/agent"
	"github.com/strandworks/strand/llm"
)

func simpleState(completion string) *agent.TaskState {
	output := llm.ModelOutput{
		Choices: []llm.Choice{{Message: llm.AssistantMessage(completion)}},
	}
	return &agent.TaskState{Output: &output}
}

func TestSingleMatchSuccess(t *testing.T) {
	s, err := NewPatternScorer("(foo)")
	if err != nil {
		t.Fatalf("NewPatternScorer: %v", err)
	}

	result, err := s.Score(simpleState("foo"), Target{"foo"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Correct {
		t.Errorf("expected Correct, got %q", result.Value)
	}
}

func TestSingleMatchFailureWithTarget(t *testing.T) {
	s, _ := NewPatternScorer("(foo)")

	result, err := s.Score(simpleState("foo"), Target{"target doesn't match"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
}

func TestSingleMatchFailureFromModel(t *testing.T) {
	s, _ := NewPatternScorer("(foo)")

	result, err := s.Score(simpleState("model doesn't match"), Target{"foo"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
}

func TestSingleMatchIgnoresCaseByDefault(t *testing.T) {
	s, _ := NewPatternScorer("(FOO)")

	result, err := s.Score(simpleState("foo"), Target{"foo"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Correct {
		t.Errorf("expected Correct, got %q", result.Value)
	}
}

func TestSingleMatchCaseSensitive(t *testing.T) {
	s, _ := NewPatternScorer("(FOO)", CaseSensitive())

	result, err := s.Score(simpleState("foo"), Target{"foo"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
}

func TestMultiMatchSuccessOnFirstMatch(t *testing.T) {
	s, _ := NewPatternScorer("(foo) (bar)")

	result, err := s.Score(simpleState("foo bar"), Target{"foo"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Correct {
		t.Errorf("expected Correct, got %q", result.Value)
	}
	if result.Answer != "foo" {
		t.Errorf("expected answer foo, got %q", result.Answer)
	}
}

func TestMultiMatchSuccessOnSubsequentMatch(t *testing.T) {
	s, _ := NewPatternScorer("(foo) (bar)")

	result, err := s.Score(simpleState("foo bar"), Target{"bar"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Correct {
		t.Errorf("expected Correct, got %q", result.Value)
	}
	if result.Answer != "bar" {
		t.Errorf("expected answer bar, got %q", result.Answer)
	}
}

func TestMultiMatchSuccessAllMatch(t *testing.T) {
	s, _ := NewPatternScorer("(foo) (foo)", MatchAll())

	result, err := s.Score(simpleState("foo foo"), Target{"foo"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Correct {
		t.Errorf("expected Correct, got %q", result.Value)
	}
	if result.Answer != "foo" {
		t.Errorf("expected answer foo, got %q", result.Answer)
	}
}

func TestMultiMatchFailureWhenMatchingAll(t *testing.T) {
	s, _ := NewPatternScorer("(foo|bar) (foo|bar)", MatchAll())

	result, err := s.Score(simpleState("foo bar"), Target{"bar"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
	if result.Answer != "" {
		t.Errorf("expected empty answer, got %q", result.Answer)
	}
}

func TestMultiMatchFailureWithTarget(t *testing.T) {
	s, _ := NewPatternScorer("(foo) (bar)")

	result, err := s.Score(simpleState("foo bar"), Target{"target doesn't match"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
}

func TestMultiMatchFailureFromModel(t *testing.T) {
	s, _ := NewPatternScorer("(foo) (bar)")

	result, err := s.Score(simpleState("model doesn't match"), Target{"bar"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
}

func TestOnlyReturnsExactTargetMatches(t *testing.T) {
	s, _ := NewPatternScorer("(f[oz]o) (b[az]r)")

	result, err := s.Score(simpleState("foo bzr"), Target{"bar"})
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if result.Value != Incorrect {
		t.Errorf("expected Incorrect, got %q", result.Value)
	}
}

func TestInvalidPattern(t *testing.T) {
	if _, err := NewPatternScorer("(unclosed"); err == nil {
		t.Error("expected error for invalid pattern")
	}
}
