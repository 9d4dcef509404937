// Regex pattern scorer.
//
// Extracts candidate answers from the model's final output with a regular
// expression and compares the capture groups against the target.

package scorer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/strandworks/strand/agent"
)

// PatternScorer scores a conversation by matching a regular expression
// against the final assistant output. Capture groups are the candidate
// answers; a group that equals one of the target values scores Correct.
type PatternScorer struct {
	re         *regexp.Regexp
	ignoreCase bool
	matchAll   bool
}

// PatternOption configures a PatternScorer.
type PatternOption func(*PatternScorer)

// CaseSensitive makes both matching and target comparison case sensitive.
// The default is case insensitive.
func CaseSensitive() PatternOption {
	return func(s *PatternScorer) { s.ignoreCase = false }
}

// MatchAll requires every capture group to match the target, not just one.
func MatchAll() PatternOption {
	return func(s *PatternScorer) { s.matchAll = true }
}

// NewPatternScorer compiles the pattern and returns the scorer.
func NewPatternScorer(pattern string, opts ...PatternOption) (*PatternScorer, error) {
	s := &PatternScorer{ignoreCase: true}
	for _, opt := range opts {
		opt(s)
	}

	if s.ignoreCase {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}
	s.re = re
	return s, nil
}

// Name identifies the scorer.
func (s *PatternScorer) Name() string {
	return "pattern"
}

// Score matches the pattern against the conversation's final output.
func (s *PatternScorer) Score(state *agent.TaskState, target Target) (Score, error) {
	match := s.re.FindStringSubmatch(state.OutputText())
	if match == nil {
		return Score{Value: Incorrect}, nil
	}

	groups := match[1:]
	var answer string
	var found bool
	if s.matchAll {
		answer, found = s.matchAllGroups(groups, target)
	} else {
		answer, found = s.matchFirstGroup(groups, target)
	}

	if !found {
		return Score{Value: Incorrect}, nil
	}
	return Score{Value: Correct, Answer: answer}, nil
}

// matchFirstGroup returns the first capture group that equals a target value.
func (s *PatternScorer) matchFirstGroup(groups []string, target Target) (string, bool) {
	for _, group := range groups {
		if group == "" {
			continue
		}
		if s.matchesTarget(group, target) {
			return group, true
		}
	}
	return "", false
}

// matchAllGroups succeeds only when every non-empty capture group equals a
// target value; the answer is the first group.
func (s *PatternScorer) matchAllGroups(groups []string, target Target) (string, bool) {
	answer := ""
	for _, group := range groups {
		if group == "" {
			continue
		}
		if !s.matchesTarget(group, target) {
			return "", false
		}
		if answer == "" {
			answer = group
		}
	}
	return answer, answer != ""
}

func (s *PatternScorer) matchesTarget(group string, target Target) bool {
	for _, t := range target {
		if s.ignoreCase && strings.EqualFold(group, t) {
			return true
		}
		if !s.ignoreCase && group == t {
			return true
		}
	}
	return false
}
