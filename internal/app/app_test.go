package app

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edchat/internal/chat"
	"github.com/abhisek/edchat/internal/config"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screens/settings"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/store"
	"github.com/abhisek/edchat/internal/study"
)

func testModel(t *testing.T) AppModel {
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
	return New(svc)
}

func TestAppModel_EscAtRootIsNoop(t *testing.T) {
	m := testModel(t)
	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd != nil {
		t.Error("esc on the home screen should do nothing")
	}
}

func TestAppModel_EscPopsPushedScreen(t *testing.T) {
	m := testModel(t)
	m.router.Push(settings.New(m.svc))

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("esc should pop the settings screen")
	}
}

func TestAppModel_HeaderInfo(t *testing.T) {
	m := testModel(t)
	m.svc.Chat.Send(context.Background(), "what is photosynthesis?")

	info := m.headerInfo()
	if info.Context == "" {
		t.Error("header should show the inferred context")
	}
}

func TestAppModel_FooterUsesScreenHints(t *testing.T) {
	m := testModel(t)
	s := settings.New(m.svc)
	m.router.Push(s)

	hints := m.footerHints(s)
	if len(hints) != len(s.KeyHints())+1 {
		t.Errorf("hints = %v", hints)
	}
}
