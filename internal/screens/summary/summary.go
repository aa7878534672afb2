package summary

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/study"
	"github.com/abhisek/edchat/internal/ui/layout"
	"github.com/abhisek/edchat/internal/ui/theme"
)

type exportedMsg struct {
	Path string
	Err  error
}

// SummaryScreen displays a graded session.
type SummaryScreen struct {
	svc        *study.Services
	completion study.Completion
	exportPath string
	exportErr  string
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a new SummaryScreen.
func New(svc *study.Services, c study.Completion) *SummaryScreen {
	return &SummaryScreen{svc: svc, completion: c}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Quiz Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Continue"},
		{Key: "E", Description: "Export"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case exportedMsg:
		if msg.Err != nil {
			s.exportErr = msg.Err.Error()
		} else {
			s.exportPath = msg.Path
			s.exportErr = ""
		}
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc":
			return s, router.Pop()
		case "e", "E":
			return s, s.export()
		}
	}
	return s, nil
}

func (s *SummaryScreen) export() tea.Cmd {
	svc := s.svc
	id := s.completion.Summary.State.ID
	text := s.completion.Export
	return func() tea.Msg {
		path, err := svc.WriteExport("", id, text)
		return exportedMsg{Path: path, Err: err}
	}
}

func (s *SummaryScreen) View(width, height int) string {
	sum := s.completion.Summary
	score := sum.Score

	var b strings.Builder

	title := "Quiz complete!"
	switch {
	case sum.TimedOut:
		title = "Time's up!"
	case score.Perfect():
		title = "Perfect score!"
	}
	b.WriteString(layout.Centered(title, width, lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)))
	b.WriteString("\n\n")

	mins := int(sum.Elapsed.Minutes())
	secs := int(sum.Elapsed.Seconds()) % 60
	b.WriteString(layout.Centered(fmt.Sprintf("Time: %d:%02d", mins, secs), width,
		lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")

	statsLine := fmt.Sprintf("Questions: %d        Correct: %d        Score: %d%%",
		score.Total, score.Correct, score.Percentage)
	b.WriteString(layout.Centered(statsLine, width, lipgloss.NewStyle().Foreground(theme.Text)))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render("Answers")))
	b.WriteString("\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n")

	lineWidth := max(min(width-16, 64), 10)
	for i, q := range sum.State.Questions {
		if i >= len(sum.Outcomes) {
			break
		}
		o := sum.Outcomes[i]
		mark, style := "✓", theme.Correct
		if !o.Correct {
			mark, style = "✗", theme.Incorrect
		}
		detail := "answer " + session.Letter(q.CorrectIndex)
		if !o.Answered() {
			detail += ", skipped"
		}
		text := truncate(q.Question, lineWidth-len(detail)-4)
		line := fmt.Sprintf("%s %s  (%s)", style.Render(mark), text, detail)
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.Text).Width(lineWidth).Render(line)))
		b.WriteString("\n")
	}

	if len(s.completion.Unlocked) > 0 {
		b.WriteString("\n")
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			lipgloss.NewStyle().Foreground(theme.TextDim).Render("Achievements unlocked")))
		b.WriteString("\n")
		b.WriteString(layout.Divider(width))
		b.WriteString("\n")
		for _, a := range s.completion.Unlocked {
			line := fmt.Sprintf("%s %s %s — %s", a.Icon, a.Rarity.DisplayName(), a.Name, a.Description)
			b.WriteString(layout.Centered(line, width, lipgloss.NewStyle().Foreground(RarityColor(a.Rarity))))
			b.WriteString("\n")
		}
	}

	if s.exportPath != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered("Exported to "+s.exportPath, width, lipgloss.NewStyle().Foreground(theme.Success)))
	} else if s.exportErr != "" {
		b.WriteString("\n")
		b.WriteString(layout.Centered("Export failed: "+s.exportErr, width, lipgloss.NewStyle().Foreground(theme.Error)))
	}

	return b.String()
}

// RarityColor returns the theme color for an achievement rarity.
func RarityColor(r stats.Rarity) color.Color {
	switch r {
	case stats.RarityCommon:
		return theme.Text
	case stats.RarityRare:
		return theme.Secondary
	case stats.RarityEpic:
		return theme.Primary
	case stats.RarityLegendary:
		return theme.Accent
	default:
		return theme.Text
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n < 4 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
