package quiz

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/pipeline"
	"github.com/abhisek/edchat/internal/topics"
	"github.com/abhisek/edchat/internal/ui/components"
	"github.com/abhisek/edchat/internal/ui/layout"
	"github.com/abhisek/edchat/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	switch {
	case s.errMsg != "":
		return renderError(width, s.errMsg)
	case s.loading:
		return renderLoading(width, s.label())
	case s.confirmQuit:
		return renderConfirm(width, "Leave this quiz?", "It will not be scored.", "[Y] Leave", "[N] Keep going")
	case s.confirmSubmit:
		sub := "All questions answered."
		if left := len(s.questions()) - len(s.answers()); left > 0 {
			sub = fmt.Sprintf("%d unanswered question(s) will count as incorrect.", left)
		}
		return renderConfirm(width, "Submit your answers?", sub, "[Y] Submit", "[N] Keep going")
	case s.submitting:
		return layout.Centered("\n\n\nSaving your results...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	}
	return s.renderQuestion(width)
}

func (s *QuizScreen) label() string {
	if s.subject == "" && s.topic == "" {
		return "mixed topics"
	}
	return topics.Context{Subject: s.subject, Topic: s.topic}.Label()
}

func (s *QuizScreen) renderQuestion(width int) string {
	q, ok := s.question()
	if !ok {
		return ""
	}
	answers := s.answers()
	total := len(s.questions())

	var b strings.Builder

	infoLeft := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render("  " + s.label())

	right := fmt.Sprintf("Q %d/%d   answered %d/%d", s.current+1, total, len(answers), total)
	if st := s.engine.State(); st != nil && st.Timed {
		right += "   " + lipgloss.NewStyle().Foreground(timerColor(s.remaining)).Render("⏱ "+formatClock(s.remaining))
	}
	infoRight := lipgloss.NewStyle().Foreground(theme.TextDim).Render(right)

	infoLine := infoLeft
	if pad := width - lipgloss.Width(infoLeft) - lipgloss.Width(infoRight) - 4; pad > 0 {
		infoLine += strings.Repeat(" ", pad) + infoRight
	}
	b.WriteString(infoLine)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	if s.engine.Expired() {
		b.WriteString(layout.Centered("Time's up! Submitting...", width, theme.Incorrect))
		b.WriteString("\n")
	} else if s.notice != "" {
		b.WriteString(layout.Centered(s.notice, width, theme.Hint))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	mc := components.NewMultiChoice(q.Question, q.Options, q.CorrectIndex)
	mc.Cursor = s.cursor
	if chosen, ok := answers[q.ID]; ok {
		mc.Chosen = chosen
	}
	cw := min(width-8, 76)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, mc.View(cw)))
	b.WriteString("\n")

	b.WriteString(renderDots(s.questions(), answers, s.current, width))
	return b.String()
}

// renderDots shows one marker per question: filled when answered.
func renderDots(qs []content.Question, answers map[int]int, current, width int) string {
	parts := make([]string, 0, len(qs))
	for i, q := range qs {
		dot := "○"
		if _, ok := answers[q.ID]; ok {
			dot = "●"
		}
		style := lipgloss.NewStyle().Foreground(theme.TextDim)
		if i == current {
			style = theme.Selected
		}
		parts = append(parts, style.Render(dot))
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(parts, " "))
}

func strategyNote(res pipeline.Result) string {
	var note string
	switch res.Strategy {
	case pipeline.StrategyCorpus:
		note = "From the question bank"
		if res.Relaxed {
			note += " (closest subject match)"
		}
	case pipeline.StrategyLive:
		note = "Generated for this topic"
	case pipeline.StrategyCrossSubject:
		note = "Not enough on this topic yet, so here is a mixed set"
	case pipeline.StrategySynthetic:
		note = "Offline practice set"
	}
	if res.Notice != "" {
		note = res.Notice + " " + note
	}
	return note
}

func timerColor(d time.Duration) color.Color {
	switch {
	case d <= 10*time.Second:
		return theme.Error
	case d <= 30*time.Second:
		return theme.Accent
	}
	return theme.TextDim
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func renderConfirm(width int, title, sub, yes, no string) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered(title, width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(sub, width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered(yes, width, lipgloss.NewStyle().Foreground(theme.Success)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(no, width, lipgloss.NewStyle().Foreground(theme.Primary)))
	return b.String()
}

func renderLoading(width int, label string) string {
	return layout.Centered(fmt.Sprintf("\n\n\nPreparing your quiz on %s...", label), width,
		lipgloss.NewStyle().Foreground(theme.TextDim))
}

func renderError(width int, errMsg string) string {
	return layout.Centered(fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", errMsg), width,
		lipgloss.NewStyle().Foreground(theme.Error))
}
