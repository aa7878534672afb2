package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/llm"
)

// Purpose labels quiz generation calls in the LLM event log.
const Purpose = "quiz-gen"

// LLMGenerator implements Generator using the LLM provider.
type LLMGenerator struct {
	provider llm.Provider
	config   Config
}

// New creates a new LLMGenerator with the given provider and config.
func New(provider llm.Provider, cfg Config) *LLMGenerator {
	return &LLMGenerator{provider: provider, config: cfg}
}

type questionOutput struct {
	Questions []content.Question `json:"questions"`
}

type flashcardOutput struct {
	Flashcards []struct {
		Front string `json:"front"`
		Back  string `json:"back"`
	} `json:"flashcards"`
}

// Generate asks for structured output first. If the provider answers with
// content that fails the schema, that content is handed back as Raw.
func (g *LLMGenerator) Generate(ctx context.Context, input Input) (Output, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Request{
		System: systemPromptFor(input.Kind),
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(input, g.config)},
		},
		Schema:      schemaFor(input.Kind),
		MaxTokens:   g.config.MaxTokens,
		Temperature: g.config.Temperature,
	}

	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		var invalid *llm.ErrInvalidResponse
		if errors.As(err, &invalid) && len(invalid.Content) > 0 {
			return Output{Raw: string(invalid.Content)}, nil
		}
		return Output{}, fmt.Errorf("LLM generation failed: %w", err)
	}

	set, ok := decode(input.Kind, resp.Content)
	if !ok {
		return Output{Raw: resp.Text()}, nil
	}
	return Output{Set: set, Structured: true}, nil
}

// decode maps a schema-shaped payload to records. ok is false when the
// payload is not the expected shape.
func decode(kind content.Kind, data json.RawMessage) (content.Set, bool) {
	set := content.Set{Kind: kind}
	switch kind {
	case content.KindFlashcardFact:
		var out flashcardOutput
		if err := json.Unmarshal(data, &out); err != nil || len(out.Flashcards) == 0 {
			return set, false
		}
		for _, c := range out.Flashcards {
			set.Flashcards = append(set.Flashcards, content.Flashcard{Front: c.Front, Back: c.Back, Kind: content.CardFact})
		}
	default:
		var out questionOutput
		if err := json.Unmarshal(data, &out); err != nil || len(out.Questions) == 0 {
			return set, false
		}
		if kind == content.KindFlashcardQuiz {
			for _, q := range out.Questions {
				set.Flashcards = append(set.Flashcards, q.ToFlashcard())
			}
		} else {
			set.Questions = out.Questions
		}
	}
	set.Renumber()
	return set, true
}
