package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/ui/theme"
)

// MultiChoice renders one multiple-choice question. It holds no session
// state; the quiz screen fills it in from the engine on every render.
type MultiChoice struct {
	Question string
	Options  []string
	// Cursor is the highlighted option.
	Cursor int
	// Chosen is the recorded answer, or -1.
	Chosen int
	// Correct is the right option, shown only when Reveal is set.
	Correct int
	Reveal  bool
}

// NewMultiChoice creates a component for an unanswered question.
func NewMultiChoice(question string, options []string, correct int) MultiChoice {
	return MultiChoice{
		Question: question,
		Options:  options,
		Chosen:   -1,
		Correct:  correct,
	}
}

// Up moves the cursor up.
func (m *MultiChoice) Up() {
	if m.Cursor > 0 {
		m.Cursor--
	}
}

// Down moves the cursor down.
func (m *MultiChoice) Down() {
	if m.Cursor < len(m.Options)-1 {
		m.Cursor++
	}
}

// OptionLetter returns "A" for 0, "B" for 1 and so on.
func OptionLetter(i int) string {
	return string(rune('A' + i))
}

// View renders the question and its options at the given width.
func (m MultiChoice) View(width int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Width(width).Render(m.Question))
	b.WriteString("\n\n")

	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Cursor && !m.Reveal {
			prefix = "▸ "
		}
		mark := " "
		if i == m.Chosen {
			mark = "●"
		}
		line := fmt.Sprintf("%s%s %s)  %s", prefix, mark, OptionLetter(i), opt)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Reveal && i == m.Correct:
			style = theme.Correct
		case m.Reveal && i == m.Chosen:
			style = theme.Incorrect
		case m.Reveal:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Cursor:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
