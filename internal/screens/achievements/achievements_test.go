package achievements

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/store"
)

func ledgerWithFirstQuiz(t *testing.T) *stats.Ledger {
	t.Helper()
	l := stats.Open(context.Background(), store.NewMemoryKV())
	l.Complete(context.Background(), "History", session.Score{Correct: 1, Total: 3, Percentage: 33})
	return l
}

func TestAchievementsScreen_Filters(t *testing.T) {
	s := New(ledgerWithFirstQuiz(t))

	if got := len(s.filtered()); got != len(stats.Achievements) {
		t.Errorf("all = %d, want %d", got, len(stats.Achievements))
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.filter != FilterUnlocked {
		t.Fatalf("filter = %v, want unlocked", s.filter)
	}
	unlocked := s.filtered()
	if len(unlocked) != 1 || unlocked[0].ID != "first-quiz" {
		t.Errorf("unlocked = %+v", unlocked)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if got := len(s.filtered()); got != len(stats.Achievements)-1 {
		t.Errorf("locked = %d", got)
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab, Mod: tea.ModShift})
	if s.filter != FilterUnlocked {
		t.Errorf("shift+tab should go back, got %v", s.filter)
	}
}

func TestAchievementsScreen_View(t *testing.T) {
	s := New(ledgerWithFirstQuiz(t))
	view := s.View(120, 30)
	if !strings.Contains(view, "Unlocked 1 of") {
		t.Error("missing unlock count")
	}
	if !strings.Contains(view, "First Steps") {
		t.Error("missing achievement name")
	}
}

func TestAchievementsScreen_Escape(t *testing.T) {
	s := New(ledgerWithFirstQuiz(t))
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop")
	}
}
