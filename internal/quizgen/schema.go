package quizgen

import (
	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/llm"
)

// QuizSchema is the structured response for quiz questions.
var QuizSchema = &llm.Schema{
	Name:        "quiz-questions",
	Description: "A batch of multiple-choice quiz questions with explanations",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"question": map[string]any{
							"type":        "string",
							"description": "The question shown to the learner, in plain text",
						},
						"options": map[string]any{
							"type":        "array",
							"items":       map[string]any{"type": "string"},
							"description": "Four answer options without letter prefixes",
						},
						"correct_index": map[string]any{
							"type":        "integer",
							"minimum":     0,
							"description": "Zero-based index of the correct option",
						},
						"explanation": map[string]any{
							"type":        "string",
							"description": "One or two sentences explaining the correct answer",
						},
					},
					"required":             []any{"question", "options", "correct_index", "explanation"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	},
}

// FlashcardSchema is the structured response for fact flashcards.
var FlashcardSchema = &llm.Schema{
	Name:        "flashcards",
	Description: "A batch of front/back study flashcards",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"flashcards": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"front": map[string]any{
							"type":        "string",
							"description": "A term, concept or short question",
						},
						"back": map[string]any{
							"type":        "string",
							"description": "The definition or answer, at most a few sentences",
						},
					},
					"required":             []any{"front", "back"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"flashcards"},
		"additionalProperties": false,
	},
}

// schemaFor returns the schema to request for kind. Quiz-derived flashcards
// are generated as questions and converted.
func schemaFor(kind content.Kind) *llm.Schema {
	if kind == content.KindFlashcardFact {
		return FlashcardSchema
	}
	return QuizSchema
}
