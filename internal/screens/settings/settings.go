// Package settings edits the learner's quiz preferences.
package settings

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/prefs"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/study"
	"github.com/abhisek/edchat/internal/ui/layout"
	"github.com/abhisek/edchat/internal/ui/theme"
)

type field int

const (
	fieldTimed field = iota
	fieldDifficulty
	fieldCount
	fieldSocratic
	numFields
)

var difficulties = []content.Difficulty{
	content.DifficultyEasy,
	content.DifficultyMedium,
	content.DifficultyHard,
}

// SettingsScreen toggles timed mode, difficulty, question count and the
// socratic tutor. Every change is saved immediately.
type SettingsScreen struct {
	svc    *study.Services
	p      prefs.Prefs
	cursor field
	errMsg string
}

var _ screen.Screen = (*SettingsScreen)(nil)
var _ screen.KeyHintProvider = (*SettingsScreen)(nil)

// New creates a new SettingsScreen.
func New(svc *study.Services) *SettingsScreen {
	return &SettingsScreen{svc: svc, p: svc.Prefs()}
}

func (s *SettingsScreen) Init() tea.Cmd {
	return nil
}

func (s *SettingsScreen) Title() string {
	return "Settings"
}

func (s *SettingsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Select"},
		{Key: "←→", Description: "Change"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *SettingsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc":
		return s, router.Pop()
	case "up", "k":
		s.cursor = (s.cursor - 1 + numFields) % numFields
	case "down", "j":
		s.cursor = (s.cursor + 1) % numFields
	case "left", "h", "-":
		s.change(-1)
	case "right", "l", "+", "enter", "space":
		s.change(1)
	}
	return s, nil
}

func (s *SettingsScreen) change(delta int) {
	p := s.p
	switch s.cursor {
	case fieldTimed:
		p.Timed = !p.Timed
	case fieldSocratic:
		p.Socratic = !p.Socratic
	case fieldDifficulty:
		i := 0
		for j, d := range difficulties {
			if d == p.Difficulty {
				i = j
			}
		}
		i = (i + delta + len(difficulties)) % len(difficulties)
		p.Difficulty = difficulties[i]
	case fieldCount:
		p.QuestionCount += delta
	}
	p = p.Normalize()
	if err := s.svc.SavePrefs(context.Background(), p); err != nil {
		s.errMsg = fmt.Sprintf("Could not save settings: %v", err)
	} else {
		s.errMsg = ""
	}
	s.p = p
}

func (s *SettingsScreen) View(width, height int) string {
	rows := []struct {
		name, value string
	}{
		{"Timed quizzes", onOff(s.p.Timed)},
		{"Difficulty", string(s.p.Difficulty)},
		{"Questions per quiz", fmt.Sprintf("%d", s.p.QuestionCount)},
		{"Socratic tutor", onOff(s.p.Socratic)},
	}

	var b strings.Builder
	b.WriteString("\n\n")
	for i, r := range rows {
		line := fmt.Sprintf("%-22s ‹ %-8s ›", r.name, r.value)
		style := theme.Unselected
		if field(i) == s.cursor {
			style = theme.Selected
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(line)))
		b.WriteString("\n\n")
	}

	if s.errMsg != "" {
		b.WriteString(layout.Centered(s.errMsg, width, lipgloss.NewStyle().Foreground(theme.Error)))
		b.WriteString("\n")
	}
	return b.String()
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
