package session

import (
	"fmt"
	"strings"

	"github.com/abhisek/edchat/internal/content"
)

// Letter returns the option label for index i: A, B, ...
func Letter(i int) string {
	if i < 0 || i >= 26 {
		return "?"
	}
	return string(rune('A' + i))
}

// Export renders questions as plain text, one block per question in order.
// When answers is non-nil each block also shows the learner's choice.
// The output depends only on the arguments.
func Export(info Info, questions []content.Question, answers map[int]int) string {
	var b strings.Builder

	title := "Quiz"
	switch {
	case info.Subject != "" && info.Topic != "":
		title = fmt.Sprintf("Quiz: %s - %s", info.Subject, info.Topic)
	case info.Subject != "":
		title = "Quiz: " + info.Subject
	case info.Topic != "":
		title = "Quiz: " + info.Topic
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(&b, "   %s. %s\n", Letter(j), opt)
		}
		fmt.Fprintf(&b, "Answer: %s\n", Letter(q.CorrectIndex))
		if answers != nil {
			if a, ok := answers[q.ID]; ok {
				mark := "incorrect"
				if a == q.CorrectIndex {
					mark = "correct"
				}
				fmt.Fprintf(&b, "Your answer: %s (%s)\n", Letter(a), mark)
			} else {
				b.WriteString("Your answer: none\n")
			}
		}
		if e := strings.TrimSpace(q.Explanation); e != "" {
			fmt.Fprintf(&b, "Explanation: %s\n", e)
		}
		if i < len(questions)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
