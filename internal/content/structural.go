package content

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// StructuralValidator checks that required fields are present and within
// length limits, and that the correct index points at an option.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) ValidateQuestion(q *Question) *ValidationError {
	if strings.TrimSpace(q.Question) == "" {
		return v.fail("question is empty")
	}
	if utf8.RuneCountInString(q.Question) > MaxQuestionLen {
		return v.fail(fmt.Sprintf("question exceeds %d characters", MaxQuestionLen))
	}
	if n := len(q.Options); n < MinOptions || n > MaxOptions {
		return v.fail(fmt.Sprintf("need %d-%d options, got %d", MinOptions, MaxOptions, n))
	}
	for i, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return v.fail(fmt.Sprintf("option %d is empty", i))
		}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return v.fail(fmt.Sprintf("correct_index %d out of range [0,%d)", q.CorrectIndex, len(q.Options)))
	}
	if utf8.RuneCountInString(q.Explanation) > MaxExplanationLen {
		return v.fail(fmt.Sprintf("explanation exceeds %d characters", MaxExplanationLen))
	}
	return nil
}

func (v *StructuralValidator) ValidateFlashcard(c *Flashcard) *ValidationError {
	if strings.TrimSpace(c.Front) == "" {
		return v.fail("front is empty")
	}
	if strings.TrimSpace(c.Back) == "" {
		return v.fail("back is empty")
	}
	if utf8.RuneCountInString(c.Front) > MaxFrontLen {
		return v.fail(fmt.Sprintf("front exceeds %d characters", MaxFrontLen))
	}
	if utf8.RuneCountInString(c.Back) > MaxBackLen {
		return v.fail(fmt.Sprintf("back exceeds %d characters", MaxBackLen))
	}
	if c.Kind != CardQuizDerived && c.Kind != CardFact {
		return v.fail(fmt.Sprintf("kind must be %q or %q", CardQuizDerived, CardFact))
	}
	if c.Kind == CardQuizDerived && c.SourceOptions != nil {
		if n := len(c.SourceOptions); n < MinOptions || n > MaxOptions {
			return v.fail(fmt.Sprintf("need %d-%d source options, got %d", MinOptions, MaxOptions, n))
		}
	}
	return nil
}

func (v *StructuralValidator) fail(msg string) *ValidationError {
	return &ValidationError{Validator: v.Name(), Message: msg}
}

// OptionsValidator rejects questions whose options repeat (ignoring case
// and spacing).
type OptionsValidator struct{}

func (v *OptionsValidator) Name() string { return "options" }

func (v *OptionsValidator) ValidateQuestion(q *Question) *ValidationError {
	seen := make(map[string]bool, len(q.Options))
	for _, o := range q.Options {
		key := dedupKey(o)
		if seen[key] {
			return &ValidationError{Validator: v.Name(), Message: fmt.Sprintf("duplicate option %q", o)}
		}
		seen[key] = true
	}
	return nil
}

func (v *OptionsValidator) ValidateFlashcard(*Flashcard) *ValidationError { return nil }

// dedupKey normalizes text for duplicate detection.
func dedupKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
