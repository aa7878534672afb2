package quizgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/edchat/internal/content"
)

const quizSystemPrompt = `You are a tutor writing multiple-choice quiz questions for a student.

Rules:
- Write exactly the requested number of questions about the given subject and topic.
- Each question has exactly 4 options. Exactly one is correct. Distractors should reflect common misconceptions, not random values.
- Do not prefix options with letters or numbers.
- correct_index is the zero-based position of the correct option. Vary it across questions.
- The explanation states in one or two sentences why the correct option is right.
- Match the requested difficulty: "easy" checks recall, "medium" checks understanding, "hard" needs multi-step reasoning.
- Use plain text. Do not use LaTeX; write symbols such as →, ×, ≤ directly.
- Questions must be self-contained and must not repeat any question from the "already asked" list.
- Return only the JSON object.`

const flashcardSystemPrompt = `You are a tutor writing study flashcards for a student.

Rules:
- Write exactly the requested number of flashcards about the given subject and topic.
- The front is a term, concept or short question. The back defines or answers it in at most three sentences.
- Each card covers a different fact. Do not repeat anything from the "already asked" list.
- Match the requested difficulty: "easy" covers core vocabulary, "hard" covers finer distinctions.
- Use plain text. Do not use LaTeX; write symbols such as →, ×, ≤ directly.
- Return only the JSON object.`

func systemPromptFor(kind content.Kind) string {
	if kind == content.KindFlashcardFact {
		return flashcardSystemPrompt
	}
	return quizSystemPrompt
}

// buildUserMessage constructs the user message from Input and Config limits.
func buildUserMessage(input Input, cfg Config) string {
	subject := input.Subject
	if subject == "" {
		subject = "General knowledge"
	}
	topic := input.Topic
	if topic == "" {
		topic = "any core topic of the subject"
	}
	difficulty := input.Difficulty
	if difficulty == "" {
		difficulty = content.DifficultyMedium
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Subject: %s\n", subject)
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Difficulty: %s\n", difficulty)
	if input.Kind == content.KindFlashcardFact {
		fmt.Fprintf(&b, "Flashcards: %d\n", clampCount(input.Count, cfg))
	} else {
		fmt.Fprintf(&b, "Questions: %d\n", clampCount(input.Count, cfg))
	}

	b.WriteString("\nAlready asked:\n")
	b.WriteString(buildDedup(input.Prior, cfg.MaxPriorQuestions))

	return b.String()
}

// buildDedup formats prior questions for the prompt, respecting the max limit.
// Returns "None" if there are no prior questions.
func buildDedup(prior []string, max int) string {
	if len(prior) == 0 {
		return "None"
	}

	// Keep only the most recent N questions.
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}

func clampCount(n int, cfg Config) int {
	if n <= 0 {
		n = 5
	}
	if cfg.MaxCount > 0 && n > cfg.MaxCount {
		n = cfg.MaxCount
	}
	return n
}
