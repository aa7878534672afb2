package chat

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	edchat "github.com/abhisek/edchat/internal/chat"
	"github.com/abhisek/edchat/internal/config"
	"github.com/abhisek/edchat/internal/corpus"
	"github.com/abhisek/edchat/internal/pipeline"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screens/flashcards"
	"github.com/abhisek/edchat/internal/screens/quiz"
	"github.com/abhisek/edchat/internal/store"
	"github.com/abhisek/edchat/internal/study"
)

type cannedBackend struct {
	reply edchat.Reply
}

func (b cannedBackend) Reply(context.Context, edchat.Request) (edchat.Reply, error) {
	return b.reply, nil
}

func newScreen(t *testing.T, backend edchat.Backend) *ChatScreen {
	t.Helper()
	ctx := context.Background()
	kv := store.NewMemoryKV()
	svc := &study.Services{
		Chat:     edchat.New(ctx, backend, kv),
		Pipeline: pipeline.New(corpus.MustDefault(), nil),
		KV:       kv,
		Quiz:     config.Default().Quiz,
		LLMReady: backend != nil,
	}
	svc.LoadPrefs(ctx)
	return New(svc)
}

func typeText(s *ChatScreen, text string) {
	for _, r := range text {
		s.Update(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

func TestChatScreen_SendAndReply(t *testing.T) {
	s := newScreen(t, cannedBackend{reply: edchat.Reply{ResponseText: "Energy is conserved.", Action: edchat.ActionNone}})

	typeText(s, "what is kinetic energy")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected send command")
	}
	if s.pending == "" {
		t.Error("expected pending message while waiting")
	}
	if !strings.Contains(s.View(100, 30), "thinking") {
		t.Error("expected thinking indicator")
	}

	_, next := s.Update(cmd())
	if next != nil {
		t.Error("plain reply should not navigate")
	}
	if s.pending != "" {
		t.Error("pending should clear after reply")
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "Energy is conserved.") {
		t.Error("reply missing from transcript")
	}
	if !strings.Contains(view, "Physics") {
		t.Error("inferred context missing from status line")
	}
}

func TestChatScreen_TriggerOpensQuiz(t *testing.T) {
	s := newScreen(t, cannedBackend{reply: edchat.Reply{ResponseText: "Let's go!", Action: edchat.ActionStartQuiz}})
	typeText(s, "I'm ready")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, nav := s.Update(cmd())
	if nav == nil {
		t.Fatal("expected navigation")
	}
	push, ok := nav().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected push")
	}
	if _, ok := push.Screen.(*quiz.QuizScreen); !ok {
		t.Errorf("pushed %T, want quiz", push.Screen)
	}
}

func TestChatScreen_OfflineFlashcards(t *testing.T) {
	s := newScreen(t, nil)
	typeText(s, "flashcards on photosynthesis")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	_, nav := s.Update(cmd())
	push, ok := nav().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected push")
	}
	if _, ok := push.Screen.(*flashcards.FlashcardScreen); !ok {
		t.Errorf("pushed %T, want flashcards", push.Screen)
	}
}

func TestChatScreen_OfflineNotice(t *testing.T) {
	s := newScreen(t, nil)
	typeText(s, "hello")
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	s.Update(cmd())
	if !strings.Contains(s.notice, "No tutor") {
		t.Errorf("notice = %q", s.notice)
	}
}

func TestChatScreen_ToggleSocratic(t *testing.T) {
	s := newScreen(t, nil)
	s.Update(tea.KeyPressMsg{Code: 't', Mod: tea.ModCtrl})
	if !s.svc.Chat.Socratic() || !s.svc.Prefs().Socratic {
		t.Error("ctrl+t should enable socratic mode")
	}
}

func TestChatScreen_EmptyInputIgnored(t *testing.T) {
	s := newScreen(t, nil)
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("empty input should not send")
	}
}
