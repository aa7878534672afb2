package home

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/screens/achievements"
	"github.com/abhisek/edchat/internal/screens/chat"
	"github.com/abhisek/edchat/internal/screens/flashcards"
	"github.com/abhisek/edchat/internal/screens/history"
	"github.com/abhisek/edchat/internal/screens/quiz"
	"github.com/abhisek/edchat/internal/screens/settings"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/study"
	"github.com/abhisek/edchat/internal/ui/components"
)

// HomeScreen is the main menu.
type HomeScreen struct {
	svc        *study.Services
	menu       components.Menu
	menuLabels []string
	stats      stats.Stats
	now        func() time.Time
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.Resumer = (*HomeScreen)(nil)

// New creates a new HomeScreen.
func New(svc *study.Services) *HomeScreen {
	h := &HomeScreen{svc: svc, now: time.Now}

	push := func(build func() screen.Screen) func() tea.Cmd {
		return func() tea.Cmd { return router.Push(build()) }
	}
	// The quick actions use whatever the chat last inferred.
	ctx := func() (string, string) {
		c := svc.Chat.Context()
		return c.Subject, c.Topic
	}

	h.menuLabels = []string{"CHAT WITH TUTOR", "QUICK QUIZ", "FLASHCARDS", "ACHIEVEMENTS", "HISTORY", "SETTINGS", "EXIT"}
	items := []components.MenuItem{
		{Label: h.menuLabels[0], Action: push(func() screen.Screen { return chat.New(svc) })},
		{Label: h.menuLabels[1], Action: push(func() screen.Screen {
			subject, topic := ctx()
			return quiz.New(svc, subject, topic)
		})},
		{Label: h.menuLabels[2], Action: push(func() screen.Screen {
			subject, topic := ctx()
			return flashcards.New(svc, content.KindFlashcardFact, subject, topic)
		})},
		{Label: h.menuLabels[3], Action: push(func() screen.Screen { return achievements.New(svc.Ledger) })},
		{Label: h.menuLabels[4], Action: push(func() screen.Screen { return history.New(svc.Sessions) })},
		{Label: h.menuLabels[5], Action: push(func() screen.Screen { return settings.New(svc) })},
		{Label: h.menuLabels[6], Action: func() tea.Cmd { return tea.Quit }},
	}
	h.menu = components.NewMenu(items)
	h.stats = svc.Ledger.Stats()
	return h
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

// Resume reloads stats after a quiz or reset.
func (h *HomeScreen) Resume() tea.Cmd {
	h.stats = h.svc.Ledger.Stats()
	return nil
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	// height is the content area; add back header, footer and frame gaps
	// to estimate the terminal height.
	termHeight := height + 8
	compact := termHeight < 34 || width < 100

	cw := components.ContentWidth(width)

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	if !compact {
		sections = append(sections, RenderMascot(h.mascot()))
	}
	if !h.svc.LLMReady {
		sections = append(sections, renderLLMBanner(cw))
	}

	accuracy := int(h.stats.Accuracy()*100 + 0.5)
	sections = append(sections, renderStatsBar(h.stats.TotalQuizzes, accuracy, h.stats.StudyStreakDays, cw, compact))
	sections = append(sections, renderMenu(h.menuLabels, h.menu.Selected, cw, compact))

	return components.Frame(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}

// mascot picks the variant: celebrating after a recent unlock, sleepy when
// today's visit has not been recorded.
func (h *HomeScreen) mascot() MascotVariant {
	now := h.now()
	for _, at := range h.stats.Achievements {
		if now.Sub(at) < 24*time.Hour {
			return MascotCelebrating
		}
	}
	if h.stats.LastVisitDate != now.Format(stats.DateLayout) {
		return MascotSleepy
	}
	return MascotIdle
}
