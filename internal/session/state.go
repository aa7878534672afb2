// Package session runs a scored quiz session: answers, countdown, submit,
// score and export.
package session

import (
	"errors"
	"time"

	"github.com/abhisek/edchat/internal/content"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseIdle       Phase = iota // No session started yet
	PhaseInProgress              // Accepting answers
	PhaseSubmitted               // Scored; waiting for a new start
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseInProgress:
		return "in-progress"
	case PhaseSubmitted:
		return "submitted"
	}
	return "unknown"
}

// Contract violations. These indicate a caller bug, not a user error.
var (
	ErrEmptySession     = errors.New("session: no questions")
	ErrNotInProgress    = errors.New("session: not in progress")
	ErrUnknownQuestion  = errors.New("session: unknown question")
	ErrOptionOutOfRange = errors.New("session: option out of range")
	ErrNoSession        = errors.New("session: nothing to export")
)

// Info labels a session for stats and export.
type Info struct {
	Subject string
	Topic   string
	Kind    content.Kind
}

// State is one session's data. It is created by Start and replaced, never
// edited, by the next Start.
type State struct {
	ID        string
	Info      Info
	Questions []content.Question

	// Answers maps question ID to the chosen option index. Missing
	// means unanswered.
	Answers map[int]int

	StartedAt time.Time
	Timed     bool
	// TimeLimit is zero for untimed sessions.
	TimeLimit time.Duration
}

// Deadline returns when a timed session runs out, or the zero time.
func (s *State) Deadline() time.Time {
	if !s.Timed || s.TimeLimit <= 0 {
		return time.Time{}
	}
	return s.StartedAt.Add(s.TimeLimit)
}

// Score is the result of a submitted session.
type Score struct {
	Correct    int
	Total      int
	Percentage int // 0-100, rounded
}

// Perfect reports whether every question was answered correctly.
func (s Score) Perfect() bool {
	return s.Total > 0 && s.Correct == s.Total
}

// Outcome is the graded result for one question.
type Outcome struct {
	QuestionID int
	Chosen     int // -1 when unanswered
	Correct    bool
}

// Answered reports whether the question was answered.
func (o Outcome) Answered() bool {
	return o.Chosen >= 0
}

// Summary is what the completion hook receives.
type Summary struct {
	State    State
	Score    Score
	Outcomes []Outcome
	// TimedOut is set when the countdown triggered the submit.
	TimedOut bool
	Elapsed  time.Duration
}

// Per-question time budgets by difficulty.
var perQuestionBudget = map[content.Difficulty]time.Duration{
	content.DifficultyEasy:   45 * time.Second,
	content.DifficultyMedium: 60 * time.Second,
	content.DifficultyHard:   90 * time.Second,
}

// TimeBudget returns the countdown for a session of count questions.
// Unknown difficulties use the medium budget.
func TimeBudget(count int, difficulty content.Difficulty) time.Duration {
	per, ok := perQuestionBudget[difficulty]
	if !ok {
		per = perQuestionBudget[content.DifficultyMedium]
	}
	if count < 1 {
		count = 1
	}
	return time.Duration(count) * per
}
