// Package chat is the tutor conversation screen.
package chat

import (
	"context"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	edchat "github.com/abhisek/edchat/internal/chat"
	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/screens/flashcards"
	"github.com/abhisek/edchat/internal/screens/quiz"
	"github.com/abhisek/edchat/internal/study"
	"github.com/abhisek/edchat/internal/ui/components"
	"github.com/abhisek/edchat/internal/ui/layout"
	"github.com/abhisek/edchat/internal/ui/theme"
)

type replyMsg struct {
	Turn edchat.Turn
	Err  error
}

// ChatScreen shows the transcript and an input line.
type ChatScreen struct {
	svc     *study.Services
	input   components.TextInput
	pending string
	notice  string
	scroll  int
}

var _ screen.Screen = (*ChatScreen)(nil)
var _ screen.KeyHintProvider = (*ChatScreen)(nil)

// New creates a chat screen.
func New(svc *study.Services) *ChatScreen {
	return &ChatScreen{
		svc:   svc,
		input: components.NewTextInput("Ask your tutor anything...", 1000),
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	return s.input.Init()
}

func (s *ChatScreen) Title() string {
	return "Tutor"
}

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "Ctrl+Q", Description: "Quiz"},
		{Key: "Ctrl+F", Description: "Flashcards"},
		{Key: "Ctrl+T", Description: "Socratic"},
		{Key: "Ctrl+R", Description: "Clear"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		return s.handleReply(msg)

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			return s.send()
		case "ctrl+q":
			return s, s.study(content.KindQuiz)
		case "ctrl+f":
			return s, s.study(content.KindFlashcardFact)
		case "ctrl+t":
			return s, s.toggleSocratic()
		case "ctrl+r":
			s.svc.Chat.Reset(context.Background())
			s.notice = "Conversation cleared."
			s.scroll = 0
			return s, nil
		case "pgup":
			s.scroll++
			return s, nil
		case "pgdown":
			if s.scroll > 0 {
				s.scroll--
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *ChatScreen) send() (screen.Screen, tea.Cmd) {
	text := s.input.Value()
	if text == "" || s.pending != "" {
		return s, nil
	}
	s.input.Reset()
	s.pending = text
	s.notice = ""
	s.scroll = 0

	c := s.svc.Chat
	return s, func() tea.Msg {
		turn, err := c.Send(context.Background(), text)
		return replyMsg{Turn: turn, Err: err}
	}
}

func (s *ChatScreen) handleReply(msg replyMsg) (screen.Screen, tea.Cmd) {
	s.pending = ""
	switch {
	case msg.Turn.Notice != "":
		s.notice = msg.Turn.Notice
	case !s.svc.LLMReady && msg.Turn.Trigger == nil:
		s.notice = "No tutor is configured. Set an API key, or press Ctrl+Q for a quiz."
	}
	if t := msg.Turn.Trigger; t != nil {
		return s, s.study(t.Kind)
	}
	return s, nil
}

// study opens a quiz or flashcards for the current context.
func (s *ChatScreen) study(kind content.Kind) tea.Cmd {
	ctx := s.svc.Chat.Context()
	if kind.IsFlashcard() {
		return router.Push(flashcards.New(s.svc, kind, ctx.Subject, ctx.Topic))
	}
	return router.Push(quiz.New(s.svc, ctx.Subject, ctx.Topic))
}

func (s *ChatScreen) toggleSocratic() tea.Cmd {
	p := s.svc.Prefs()
	p.Socratic = !p.Socratic
	if err := s.svc.SavePrefs(context.Background(), p); err != nil {
		s.notice = "Could not save preference: " + err.Error()
	} else if p.Socratic {
		s.notice = "Socratic mode on: the tutor will guide with questions."
	} else {
		s.notice = "Socratic mode off."
	}
	return nil
}

func (s *ChatScreen) View(width, height int) string {
	var b strings.Builder

	ctx := s.svc.Chat.Context()
	status := ctx.Label()
	if s.svc.Chat.Socratic() {
		status += "   · socratic"
	}
	if !s.svc.LLMReady {
		status += "   · offline"
	}
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("  " + status))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n")

	// Reserve rows for the header line, divider, notice and input.
	rows := max(height-6, 3)
	lines := s.transcript(max(width-6, 20))
	end := max(len(lines)-s.scroll, 0)
	start := max(end-rows, 0)
	visible := lines[start:end]
	for range rows - len(visible) {
		b.WriteString("\n")
	}
	for _, l := range visible {
		b.WriteString("  " + l + "\n")
	}

	if s.notice != "" {
		b.WriteString(theme.Hint.Render("  " + s.notice))
	}
	b.WriteString("\n\n  ")
	b.WriteString(s.input.View())
	return b.String()
}

// transcript renders the history as wrapped lines.
func (s *ChatScreen) transcript(width int) []string {
	var lines []string
	add := func(label lipgloss.Style, who, text string) {
		body := lipgloss.NewStyle().Foreground(theme.Text).Width(width).Render(text)
		lines = append(lines, label.Render(who))
		lines = append(lines, strings.Split(body, "\n")...)
		lines = append(lines, "")
	}

	history := s.svc.Chat.History()
	if len(history) == 0 && s.pending == "" {
		lines = append(lines, theme.Hint.Render("Say hello, ask about a topic, or type \"quiz me\" when you're ready."))
		return lines
	}
	for _, m := range history {
		if m.Role == edchat.RoleUser {
			add(theme.UserLabel, "You", m.Text)
		} else {
			add(theme.TutorLabel, "Tutor", m.Text)
		}
	}
	if s.pending != "" {
		if n := len(history); n == 0 || history[n-1].Text != s.pending {
			add(theme.UserLabel, "You", s.pending)
		}
		lines = append(lines, theme.Hint.Render("Tutor is thinking..."))
	}
	return lines
}
