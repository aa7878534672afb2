// Package flashcards is the flashcard study screen.
package flashcards

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/pipeline"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/study"
	"github.com/abhisek/edchat/internal/topics"
	"github.com/abhisek/edchat/internal/ui/components"
	"github.com/abhisek/edchat/internal/ui/layout"
	"github.com/abhisek/edchat/internal/ui/theme"
)

type cardsReadyMsg struct {
	Result pipeline.Result
	// Seq guards against a reload racing an earlier load.
	Seq int
}

// FlashcardScreen steps through a deck of cards.
type FlashcardScreen struct {
	svc     *study.Services
	kind    content.Kind
	subject string
	topic   string

	ctx    context.Context
	cancel context.CancelFunc
	seq    int

	deck    *session.Deck
	loading bool
	notice  string
	errMsg  string
}

var _ screen.Screen = (*FlashcardScreen)(nil)
var _ screen.KeyHintProvider = (*FlashcardScreen)(nil)
var _ screen.EscapeHandler = (*FlashcardScreen)(nil)

// New creates a flashcard screen. kind is KindFlashcardFact or
// KindFlashcardQuiz; anything else is treated as fact cards.
func New(svc *study.Services, kind content.Kind, subject, topic string) *FlashcardScreen {
	if !kind.IsFlashcard() {
		kind = content.KindFlashcardFact
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &FlashcardScreen{
		svc:     svc,
		kind:    kind,
		subject: subject,
		topic:   topic,
		ctx:     ctx,
		cancel:  cancel,
		loading: true,
	}
}

func (s *FlashcardScreen) Init() tea.Cmd {
	return s.load()
}

func (s *FlashcardScreen) Title() string {
	return "Flashcards"
}

func (s *FlashcardScreen) HandlesEscape() bool {
	return true
}

func (s *FlashcardScreen) KeyHints() []layout.KeyHint {
	if s.deck == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return []layout.KeyHint{
		{Key: "Space", Description: "Flip"},
		{Key: "←→", Description: "Card"},
		{Key: "K", Description: "Known"},
		{Key: "R", Description: "New deck"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *FlashcardScreen) load() tea.Cmd {
	s.seq++
	seq := s.seq
	req := s.svc.Request(s.kind, s.subject, s.topic, 0)
	ctx := s.ctx
	p := s.svc.Pipeline
	return func() tea.Msg {
		return cardsReadyMsg{Result: p.Extract(ctx, req), Seq: seq}
	}
}

func (s *FlashcardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case cardsReadyMsg:
		if msg.Seq != s.seq {
			return s, nil
		}
		s.loading = false
		cards := msg.Result.Set.Flashcards
		if len(cards) == 0 {
			s.errMsg = "No flashcards available for this topic."
			return s, nil
		}
		s.deck = session.NewDeck(cards)
		s.notice = msg.Result.Notice
		return s, nil

	case tea.KeyMsg:
		key := msg.String()
		if key == "esc" {
			s.cancel()
			return s, router.Pop()
		}
		if s.deck == nil {
			if s.errMsg != "" {
				s.cancel()
				return s, router.Pop()
			}
			return s, nil
		}
		switch key {
		case "space", "enter", "f":
			s.deck.Flip()
		case "right", "l", "n":
			s.deck.Next()
		case "left", "h", "p":
			s.deck.Prev()
		case "k", "K":
			s.deck.MarkKnown()
		case "r", "R":
			s.deck = nil
			s.loading = true
			return s, s.load()
		}
	}
	return s, nil
}

func (s *FlashcardScreen) View(width, height int) string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	switch {
	case s.errMsg != "":
		return layout.Centered(fmt.Sprintf("\n\n\nError: %s\n\nPress any key to go back.", s.errMsg), width,
			lipgloss.NewStyle().Foreground(theme.Error))
	case s.loading || s.deck == nil:
		return layout.Centered("\n\n\nShuffling your cards...", width, dim)
	}

	card, _ := s.deck.Current()
	known, total := s.deck.Progress()
	cw := components.ContentWidth(width)

	var b strings.Builder
	label := topics.Context{Subject: s.subject, Topic: s.topic}.Label()
	b.WriteString(layout.Centered(label, width, lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true)))
	b.WriteString("\n")
	b.WriteString(layout.Centered(fmt.Sprintf("Card %d of %d", s.deck.Index+1, total), width, dim))
	b.WriteString("\n\n")

	side, text := "FRONT", card.Front
	if s.deck.Flipped {
		side, text = "BACK", card.Back
	}
	body := lipgloss.NewStyle().Foreground(theme.TextDim).Render(side) + "\n\n" +
		lipgloss.NewStyle().Foreground(theme.Text).Bold(!s.deck.Flipped).Render(text)
	if s.deck.Flipped && len(card.SourceOptions) > 0 {
		var opts []string
		for i, o := range card.SourceOptions {
			opts = append(opts, fmt.Sprintf("%s) %s", components.OptionLetter(i), o))
		}
		body += "\n\n" + dim.Render(strings.Join(opts, "   "))
	}
	if s.deck.Known[card.ID] {
		body += "\n\n" + theme.Correct.Render("✓ known")
	}
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(body, cw)))
	b.WriteString("\n\n")

	bar := components.NewProgressBar("Known", components.Ratio(known, total), true, cw)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))

	if s.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(s.notice, width, theme.Hint))
	}
	return b.String()
}
