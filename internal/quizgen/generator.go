// Package quizgen asks an LLM for quiz questions or flashcards about a
// subject and topic.
package quizgen

import (
	"context"

	"github.com/abhisek/edchat/internal/content"
)

// Input describes what to generate.
type Input struct {
	Kind       content.Kind
	Subject    string
	Topic      string
	Difficulty content.Difficulty
	Count      int

	// Prior lists question texts already shown, to avoid repeats.
	Prior []string
}

// Output is the generator's answer. When the provider returned structured
// content, Structured is true and Set holds the decoded records, not yet
// validated. Otherwise Raw holds the unstructured text for extraction.
type Output struct {
	Set        content.Set
	Raw        string
	Structured bool
}

// Generator produces study content. Implementations return an error only
// for transport failures; malformed content comes back as Raw.
type Generator interface {
	Generate(ctx context.Context, input Input) (Output, error)
}

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxPriorQuestions is the maximum number of prior questions
	// to include in the prompt for deduplication.
	MaxPriorQuestions int

	// MaxCount caps the number of records requested in one call.
	MaxCount int
}

// DefaultConfig returns a Config with recommended defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens:         2048,
		Temperature:       0.7,
		MaxPriorQuestions: 10,
		MaxCount:          15,
	}
}
