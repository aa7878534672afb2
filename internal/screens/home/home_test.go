package home

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edchat/internal/chat"
	"github.com/abhisek/edchat/internal/config"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screens/achievements"
	quizscreen "github.com/abhisek/edchat/internal/screens/quiz"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/store"
	"github.com/abhisek/edchat/internal/study"
)

func testServices(t *testing.T) *study.Services {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemoryKV()
	svc := &study.Services{
		Chat:   chat.New(ctx, nil, kv),
		Ledger: stats.Open(ctx, kv),
		KV:     kv,
		Quiz:   config.Default().Quiz,
	}
	svc.LoadPrefs(ctx)
	return svc
}

func pushed(t *testing.T, cmd tea.Cmd) router.PushScreenMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatalf("expected PushScreenMsg, got %T", cmd())
	}
	return msg
}

func TestHomeScreen_QuickQuiz(t *testing.T) {
	h := New(testServices(t))
	h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := pushed(t, cmd).Screen.(*quizscreen.QuizScreen); !ok {
		t.Error("QUICK QUIZ should open the quiz screen")
	}
}

func TestHomeScreen_Achievements(t *testing.T) {
	h := New(testServices(t))
	for range 3 {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, ok := pushed(t, cmd).Screen.(*achievements.AchievementsScreen); !ok {
		t.Error("ACHIEVEMENTS should open the achievements screen")
	}
}

func TestHomeScreen_ResumeRefreshesStats(t *testing.T) {
	svc := testServices(t)
	h := New(svc)
	svc.Ledger.Complete(context.Background(), "Physics", session.Score{Correct: 2, Total: 2, Percentage: 100})

	if h.stats.TotalQuizzes != 0 {
		t.Fatal("stats should be a snapshot until resumed")
	}
	h.Resume()
	if h.stats.TotalQuizzes != 1 {
		t.Errorf("TotalQuizzes = %d, want 1", h.stats.TotalQuizzes)
	}
}

func TestHomeScreen_Mascot(t *testing.T) {
	h := New(testServices(t))
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	h.now = func() time.Time { return now }

	h.stats = stats.Default()
	if got := h.mascot(); got != MascotSleepy {
		t.Errorf("no visit today: got %v, want sleepy", got)
	}

	h.stats.LastVisitDate = now.Format(stats.DateLayout)
	if got := h.mascot(); got != MascotIdle {
		t.Errorf("visited today: got %v, want idle", got)
	}

	h.stats.Achievements["first-quiz"] = now.Add(-time.Hour)
	if got := h.mascot(); got != MascotCelebrating {
		t.Errorf("recent unlock: got %v, want celebrating", got)
	}
}

func TestHomeScreen_ViewShowsLLMBanner(t *testing.T) {
	h := New(testServices(t))
	view := h.View(120, 40)
	if !strings.Contains(view, "CHAT WITH TUTOR") {
		t.Error("menu missing from view")
	}
	if !strings.Contains(view, "No tutor") {
		t.Error("offline banner missing")
	}
}
