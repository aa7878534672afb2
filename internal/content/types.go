// Package content defines quiz questions and flashcards and validates them
// record by record.
package content

import (
	"fmt"
	"strings"
)

// Kind is the kind of content a session runs over.
type Kind string

const (
	KindQuiz          Kind = "quiz"
	KindFlashcardQuiz Kind = "flashcard-quiz"
	KindFlashcardFact Kind = "flashcard-fact"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindQuiz, KindFlashcardQuiz, KindFlashcardFact:
		return true
	}
	return false
}

// IsFlashcard reports whether k produces flashcards.
func (k Kind) IsFlashcard() bool {
	return k == KindFlashcardQuiz || k == KindFlashcardFact
}

// ParseKind maps a user-facing name to a Kind. "flashcards" is accepted as
// shorthand for fact cards.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "quiz", "":
		return KindQuiz, nil
	case "flashcard-quiz", "quiz-cards":
		return KindFlashcardQuiz, nil
	case "flashcard-fact", "flashcards", "facts":
		return KindFlashcardFact, nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// Length limits, counted in characters.
const (
	MaxQuestionLen    = 500
	MaxExplanationLen = 1000
	MaxFrontLen       = 500
	MaxBackLen        = 1000
	MinOptions        = 2
	MaxOptions        = 6
)

// Question is a multiple-choice quiz question.
type Question struct {
	// ID is unique within a set and stable for the session.
	ID           int      `json:"id"`
	Question     string   `json:"question"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correct_index"`
	Explanation  string   `json:"explanation"`

	// Subject and Topic are set for curated-corpus questions.
	Subject string `json:"subject,omitempty"`
	Topic   string `json:"topic,omitempty"`
}

// CorrectOption returns the text of the correct option, or "" if the index
// is out of range.
func (q Question) CorrectOption() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// CardKind distinguishes flashcards derived from quiz questions from plain
// fact cards.
type CardKind string

const (
	CardQuizDerived CardKind = "quiz-derived"
	CardFact        CardKind = "fact"
)

// Flashcard is a front/back study card.
type Flashcard struct {
	ID    int      `json:"id"`
	Front string   `json:"front"`
	Back  string   `json:"back"`
	Kind  CardKind `json:"kind"`

	// SourceOptions carries the originating question's options for
	// quiz-derived cards.
	SourceOptions []string `json:"source_options,omitempty"`
}

// ToFlashcard turns a question into a quiz-derived card: the question on
// the front, the correct option and explanation on the back.
func (q Question) ToFlashcard() Flashcard {
	back := q.CorrectOption()
	if e := strings.TrimSpace(q.Explanation); e != "" {
		back = back + " — " + e
	}
	return Flashcard{
		ID:            q.ID,
		Front:         q.Question,
		Back:          back,
		Kind:          CardQuizDerived,
		SourceOptions: append([]string(nil), q.Options...),
	}
}

// Set is a batch of validated records of one kind. Exactly one of
// Questions and Flashcards is populated, according to Kind.
type Set struct {
	Kind       Kind
	Questions  []Question
	Flashcards []Flashcard
}

// Len returns the number of records in the set.
func (s Set) Len() int {
	if s.Kind.IsFlashcard() {
		return len(s.Flashcards)
	}
	return len(s.Questions)
}

// Renumber assigns IDs 1..n in order.
func (s *Set) Renumber() {
	for i := range s.Questions {
		s.Questions[i].ID = i + 1
	}
	for i := range s.Flashcards {
		s.Flashcards[i].ID = i + 1
	}
}

// Difficulty is the requested difficulty of generated content.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty maps a name to a Difficulty; "" is medium.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return d, nil
	case "":
		return DifficultyMedium, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}
