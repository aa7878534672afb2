package home

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/ui/theme"
)

const titleFull = ` ███████╗██████╗  ██████╗██╗  ██╗ █████╗ ████████╗
 ██╔════╝██╔══██╗██╔════╝██║  ██║██╔══██╗╚══██╔══╝
 █████╗  ██║  ██║██║     ███████║███████║   ██║
 ██╔══╝  ██║  ██║██║     ██╔══██║██╔══██║   ██║
 ███████╗██████╔╝╚██████╗██║  ██║██║  ██║   ██║
 ╚══════╝╚═════╝  ╚═════╝╚═╝  ╚═╝╚═╝  ╚═╝   ╚═╝`

const titleCompact = "E · D · C · H · A · T"

func renderTitle(cw int, compact bool) string {
	style := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	title := titleFull
	if compact {
		title = titleCompact
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(style.Render(title))
}

// renderStatsBar renders quizzes taken, accuracy and streak in a bordered box.
func renderStatsBar(quizzes, accuracy, streak, cw int, compact bool) string {
	quizStyle := lipgloss.NewStyle().Foreground(theme.Highlight).Bold(true)
	accStyle := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)
	streakStyle := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)

	format := "%s  %s  %s"
	q, a, s := fmt.Sprintf("✎ %d QUIZZES", quizzes), fmt.Sprintf("◎ %d%% ACCURACY", accuracy), fmt.Sprintf("🔥 %d DAY STREAK", streak)
	if compact {
		format = "%s %s %s"
		q, a, s = fmt.Sprintf("✎%d", quizzes), fmt.Sprintf("◎%d%%", accuracy), fmt.Sprintf("🔥%d", streak)
	}
	stats := fmt.Sprintf(format, quizStyle.Render(q), accStyle.Render(a), streakStyle.Render(s))

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(theme.Secondary).
		Width(cw - 2).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(stats)
}

// buttonWidth is the fixed width for menu buttons.
const buttonWidth = 26

// renderMenu renders each menu item as a fixed-width button, or as plain
// lines when the terminal is short.
func renderMenu(items []string, selected, cw int, compact bool) string {
	if compact {
		var lines []string
		for i, label := range items {
			if i == selected {
				lines = append(lines, lipgloss.NewStyle().
					Foreground(theme.BgDark).
					Background(theme.Highlight).
					Bold(true).
					Render(" ▸ "+label+" "))
				continue
			}
			lines = append(lines, lipgloss.NewStyle().Foreground(theme.Text).Render("   "+label))
		}
		return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(lines, "\n"))
	}

	selectedBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Bold(true).
		Foreground(theme.BgDark).
		Background(theme.Highlight).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Highlight).
		Padding(0, 1)

	normalBtn := lipgloss.NewStyle().
		Width(buttonWidth).
		Align(lipgloss.Center).
		Foreground(theme.Text).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1)

	buttons := make([]string, 0, len(items))
	for i, label := range items {
		if i == selected {
			buttons = append(buttons, selectedBtn.Render("▸ "+label))
		} else {
			buttons = append(buttons, normalBtn.Render(label))
		}
	}
	return lipgloss.NewStyle().Width(cw).Align(lipgloss.Center).Render(strings.Join(buttons, "\n"))
}

// renderLLMBanner renders a warning when no LLM API key is configured.
func renderLLMBanner(cw int) string {
	return lipgloss.NewStyle().
		Foreground(theme.Accent).
		Width(cw).
		Align(lipgloss.Center).
		Render("⚠ No tutor configured. Quizzes use the built-in question bank (see edchat --help)")
}
