// Package achievements lists earned and locked achievements.
package achievements

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/screens/summary"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/ui/components"
	"github.com/abhisek/edchat/internal/ui/layout"
	"github.com/abhisek/edchat/internal/ui/theme"
)

// Filter selects which achievements are listed.
type Filter int

const (
	FilterAll Filter = iota
	FilterUnlocked
	FilterLocked
)

var filters = []Filter{FilterAll, FilterUnlocked, FilterLocked}

// DisplayName returns the tab label.
func (f Filter) DisplayName() string {
	switch f {
	case FilterUnlocked:
		return "Unlocked"
	case FilterLocked:
		return "Locked"
	default:
		return "All"
	}
}

// AchievementsScreen displays the achievement table.
type AchievementsScreen struct {
	ledger       *stats.Ledger
	stats        stats.Stats
	filter       Filter
	scrollOffset int
}

var _ screen.Screen = (*AchievementsScreen)(nil)
var _ screen.KeyHintProvider = (*AchievementsScreen)(nil)

// New creates a new AchievementsScreen.
func New(ledger *stats.Ledger) *AchievementsScreen {
	return &AchievementsScreen{ledger: ledger, stats: ledger.Stats()}
}

func (s *AchievementsScreen) Init() tea.Cmd {
	return nil
}

func (s *AchievementsScreen) Title() string {
	return "Achievements"
}

func (s *AchievementsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Tab", Description: "Filter"},
		{Key: "↑↓", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *AchievementsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch kmsg.String() {
	case "esc":
		return s, router.Pop()
	case "tab":
		s.filter = filters[(int(s.filter)+1)%len(filters)]
		s.scrollOffset = 0
	case "shift+tab":
		s.filter = filters[(int(s.filter)-1+len(filters))%len(filters)]
		s.scrollOffset = 0
	case "up", "k":
		if s.scrollOffset > 0 {
			s.scrollOffset--
		}
	case "down", "j":
		if s.scrollOffset < len(s.filtered())-1 {
			s.scrollOffset++
		}
	}
	return s, nil
}

func (s *AchievementsScreen) View(width, height int) string {
	var b strings.Builder

	unlocked := len(s.stats.Achievements)
	total := len(stats.Achievements)
	cw := components.ContentWidth(width)

	b.WriteString("\n")
	b.WriteString(layout.Centered(fmt.Sprintf("Unlocked %d of %d", unlocked, total), width,
		lipgloss.NewStyle().Foreground(theme.Text)))
	b.WriteString("\n")
	bar := components.NewProgressBar("", components.Ratio(unlocked, total), true, cw)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	var tabs []string
	for _, f := range filters {
		label := fmt.Sprintf("%s (%d)", f.DisplayName(), s.count(f))
		if f == s.filter {
			tabs = append(tabs, theme.Selected.Render(label))
		} else {
			tabs = append(tabs, lipgloss.NewStyle().Foreground(theme.TextDim).Render(label))
		}
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(tabs, "     ")))
	b.WriteString("\n\n")
	b.WriteString(layout.Divider(width))
	b.WriteString("\n\n")

	list := s.filtered()
	if len(list) == 0 {
		b.WriteString(layout.Centered("Nothing here yet", width,
			lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true)))
		return b.String()
	}

	maxVisible := max(height-12, 3)
	start := s.scrollOffset
	end := min(start+maxVisible, len(list))

	for _, a := range list[start:end] {
		at, got := s.stats.Achievements[a.ID]
		var line string
		var style lipgloss.Style
		if got {
			line = fmt.Sprintf("%s  %-14s %-10s %-44s %s", a.Icon, a.Name, a.Rarity.DisplayName(), a.Description, at.Format("Jan 02, 2006"))
			style = lipgloss.NewStyle().Foreground(summary.RarityColor(a.Rarity))
		} else {
			line = fmt.Sprintf("🔒  %-14s %-10s %-44s %s", a.Name, a.Rarity.DisplayName(), a.Description, "")
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, style.Render(strings.TrimRight(line, " "))))
		b.WriteString("\n")
	}

	if end < len(list) {
		b.WriteString("\n")
		b.WriteString(layout.Centered(fmt.Sprintf("... %d more", len(list)-end), width,
			lipgloss.NewStyle().Foreground(theme.TextDim)))
	}
	return b.String()
}

func (s *AchievementsScreen) filtered() []stats.Achievement {
	var out []stats.Achievement
	for _, a := range stats.Achievements {
		if s.matches(a) {
			out = append(out, a)
		}
	}
	return out
}

func (s *AchievementsScreen) matches(a stats.Achievement) bool {
	switch s.filter {
	case FilterUnlocked:
		return s.stats.Has(a.ID)
	case FilterLocked:
		return !s.stats.Has(a.ID)
	}
	return true
}

func (s *AchievementsScreen) count(f Filter) int {
	prev := s.filter
	s.filter = f
	n := len(s.filtered())
	s.filter = prev
	return n
}
