package extract

import (
	"fmt"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/topics"
)

// SyntheticCount is the number of records Synthetic produces.
const SyntheticCount = 5

// displayName picks the most specific label for templated content.
func displayName(subject, topic string) string {
	switch {
	case topic != "":
		return topic
	case subject != "":
		return subject
	}
	return "General Studies"
}

// Synthetic returns five templated records about the topic. It is
// deterministic and always passes validation.
func Synthetic(kind content.Kind, subject, topic string) content.Set {
	name := displayName(subject, topic)
	if kind.IsFlashcard() {
		cardKind := content.CardFact
		if kind == content.KindFlashcardQuiz {
			cardKind = content.CardQuizDerived
		}
		return content.Set{Kind: kind, Flashcards: syntheticCards(name, subject, cardKind)}
	}
	return content.Set{Kind: kind, Questions: syntheticQuestions(name, subject)}
}

func syntheticCards(name, subject string, kind content.CardKind) []content.Flashcard {
	about := name
	if subject != "" && subject != name {
		about = fmt.Sprintf("%s (%s)", name, subject)
	}
	backs := []struct{ front, back string }{
		{"Overview", fmt.Sprintf("%s: start by stating in one sentence what it is about and why it matters.", about)},
		{"Key Terms", fmt.Sprintf("List the five most important terms in %s and write a short definition for each.", name)},
		{"Worked Example", fmt.Sprintf("Work through one solved example of %s step by step, then try a similar one on your own.", name)},
		{"Common Mistakes", fmt.Sprintf("Write down the mistakes people most often make with %s and how to avoid each one.", name)},
		{"Review", fmt.Sprintf("Explain %s out loud without notes, then check what you missed.", name)},
	}
	cards := make([]content.Flashcard, len(backs))
	for i, b := range backs {
		cards[i] = content.Flashcard{
			ID:    i + 1,
			Front: fmt.Sprintf("%s — %s", name, b.front),
			Back:  b.back,
			Kind:  kind,
		}
	}
	return cards
}

func syntheticQuestions(name, subject string) []content.Question {
	type template struct {
		question    string
		correct     string
		distractors [3]string
		explanation string
	}
	templates := []template{
		{
			fmt.Sprintf("What is the best first step when starting to study %s?", name),
			"Learn the key terms and definitions",
			[3]string{"Jump straight to the hardest problems", "Memorize answers without reading them", "Skip the basics entirely"},
			"Key vocabulary gives you the building blocks for everything else.",
		},
		{
			fmt.Sprintf("Which habit helps you remember %s over the long term?", name),
			"Reviewing it in short sessions over several days",
			[3]string{"One long cramming session", "Reading the notes once", "Highlighting every sentence"},
			"Spaced review is far more durable than cramming.",
		},
		{
			fmt.Sprintf("You got a %s question wrong. What should you do next?", name),
			"Read the explanation and try a similar question",
			[3]string{"Ignore it and move on", "Guess differently next time", "Stop studying the topic"},
			"Mistakes are most useful when you find out why they happened.",
		},
		{
			fmt.Sprintf("How can you check that you really understand %s?", name),
			"Explain it in your own words",
			[3]string{"Re-read the textbook page", "Copy the definition word for word", "Count how long you studied"},
			"Being able to explain an idea shows you understand it, not just recognize it.",
		},
		{
			fmt.Sprintf("Which of these is the most useful way to practice %s?", name),
			"Solving varied problems and checking each answer",
			[3]string{"Repeating the same problem many times", "Watching others solve problems", "Only reading worked examples"},
			"Varied practice with feedback builds flexible understanding.",
		},
	}
	if subject != "" && subject != name {
		templates[0] = template{
			fmt.Sprintf("Which subject does %s belong to?", name),
			subject,
			otherSubjects(subject),
			fmt.Sprintf("%s is studied as part of %s.", name, subject),
		}
	}

	questions := make([]content.Question, len(templates))
	for i, t := range templates {
		// Rotate the correct answer through every position.
		pos := i % 4
		opts := make([]string, 0, 4)
		opts = append(opts, t.distractors[:pos]...)
		opts = append(opts, t.correct)
		opts = append(opts, t.distractors[pos:]...)
		questions[i] = content.Question{
			ID:           i + 1,
			Question:     t.question,
			Options:      opts,
			CorrectIndex: pos,
			Explanation:  t.explanation,
		}
	}
	return questions
}

// otherSubjects returns three core subjects different from subject.
func otherSubjects(subject string) [3]string {
	var out [3]string
	n := 0
	for _, s := range topics.CoreSubjects {
		if s == subject {
			continue
		}
		out[n] = s
		n++
		if n == len(out) {
			break
		}
	}
	return out
}
