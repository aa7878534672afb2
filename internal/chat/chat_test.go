package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/llm"
	"github.com/abhisek/edchat/internal/store"
)

type fakeBackend struct {
	replies []Reply
	err     error
	calls   []Request
}

func (f *fakeBackend) Reply(_ context.Context, req Request) (Reply, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return Reply{}, f.err
	}
	if len(f.replies) == 0 {
		return Reply{ResponseText: "ok", Action: ActionNone}, nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r, nil
}

var fixedNow = time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)

func newChat(t *testing.T, b Backend, kv store.KV) *Chat {
	t.Helper()
	return New(context.Background(), b, kv, WithNow(func() time.Time { return fixedNow }))
}

func TestSendInfersContext(t *testing.T) {
	b := &fakeBackend{}
	c := newChat(t, b, store.NewMemoryKV())

	turn, err := c.Send(context.Background(), "Can you explain specific heat?")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if turn.Context.Subject != "Physics" || turn.Context.Topic != "specific heat capacity" {
		t.Errorf("context = %+v", turn.Context)
	}
	if len(b.calls) != 1 || b.calls[0].Subject != "Physics" {
		t.Errorf("backend request = %+v", b.calls)
	}
	if got := len(c.History()); got != 2 {
		t.Errorf("history len = %d, want 2", got)
	}
}

func TestSendAppliesDeclaredContext(t *testing.T) {
	b := &fakeBackend{replies: []Reply{
		{ResponseText: "Sure.", ActionSubject: "Chemistry", ActionTopic: "acids and bases"},
		{ResponseText: "More.", ActionSubject: "general", ActionTopic: "General"},
	}}
	c := newChat(t, b, store.NewMemoryKV())
	ctx := context.Background()

	if _, err := c.Send(ctx, "hello there"); err != nil {
		t.Fatal(err)
	}
	turn, err := c.Send(ctx, "tell me more")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Context.Subject != "Chemistry" || turn.Context.Topic != "acids and bases" {
		t.Errorf("general overwrote context: %+v", turn.Context)
	}
}

func TestSendTriggers(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		action string
		want   *Trigger
	}{
		{"none", "what is a mole?", ActionNone, nil},
		{"user quiz", "ok, quiz me on this", ActionNone, &Trigger{Kind: content.KindQuiz}},
		{"user test", "Test me please", "", &Trigger{Kind: content.KindQuiz}},
		{"user flashcards", "make some flashcards", "", &Trigger{Kind: content.KindFlashcardFact}},
		{"action quiz", "I think I'm ready", ActionStartQuiz, &Trigger{Kind: content.KindQuiz}},
		{"action flashcards", "let's review", ActionFlashcards, &Trigger{Kind: content.KindFlashcardFact}},
		{"action wins", "quiz me", ActionFlashcards, &Trigger{Kind: content.KindFlashcardFact}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &fakeBackend{replies: []Reply{{ResponseText: "ok", Action: tt.action}}}
			c := newChat(t, b, store.NewMemoryKV())
			turn, err := c.Send(context.Background(), tt.text)
			if err != nil {
				t.Fatal(err)
			}
			switch {
			case tt.want == nil && turn.Trigger != nil:
				t.Errorf("unexpected trigger %+v", turn.Trigger)
			case tt.want != nil && (turn.Trigger == nil || *turn.Trigger != *tt.want):
				t.Errorf("trigger = %+v, want %+v", turn.Trigger, tt.want)
			}
		})
	}
}

func TestSendBackendError(t *testing.T) {
	b := &fakeBackend{err: errors.New("connection refused")}
	c := newChat(t, b, store.NewMemoryKV())

	turn, err := c.Send(context.Background(), "what is photosynthesis?")
	if err == nil {
		t.Fatal("expected error")
	}
	if turn.Notice == "" {
		t.Error("expected notice")
	}
	if turn.Context.Topic == "" {
		t.Error("inference should still apply on failure")
	}
	h := c.History()
	if len(h) != 1 || h[0].Role != RoleUser {
		t.Errorf("history = %+v", h)
	}
}

func TestSendEmpty(t *testing.T) {
	b := &fakeBackend{}
	c := newChat(t, b, store.NewMemoryKV())
	if _, err := c.Send(context.Background(), "   "); err != nil {
		t.Fatal(err)
	}
	if len(b.calls) != 0 || len(c.History()) != 0 {
		t.Error("blank message should be ignored")
	}
}

func TestNoBackend(t *testing.T) {
	c := newChat(t, nil, store.NewMemoryKV())
	turn, err := c.Send(context.Background(), "flashcards on the periodic table")
	if err != nil {
		t.Fatal(err)
	}
	if turn.Trigger == nil || turn.Trigger.Kind != content.KindFlashcardFact {
		t.Errorf("trigger = %+v", turn.Trigger)
	}
	if turn.Context.Topic != "periodic table" {
		t.Errorf("context = %+v", turn.Context)
	}
}

func TestHistoryPersistedAndBounded(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	c := newChat(t, &fakeBackend{}, kv)

	for i := range 30 {
		if _, err := c.Send(ctx, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatal(err)
		}
	}
	h := c.History()
	if len(h) != MaxHistory {
		t.Fatalf("history len = %d, want %d", len(h), MaxHistory)
	}
	if h[len(h)-2].Text != "message 29" {
		t.Errorf("last user message = %q", h[len(h)-2].Text)
	}

	restored := newChat(t, &fakeBackend{}, kv)
	if got := restored.History(); len(got) != MaxHistory || got[0].ID != h[0].ID {
		t.Errorf("restored history mismatch: %d messages", len(got))
	}
}

func TestCorruptHistory(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	if err := kv.Set(ctx, HistoryKey, []byte("{not json")); err != nil {
		t.Fatal(err)
	}
	c := newChat(t, &fakeBackend{}, kv)
	if len(c.History()) != 0 {
		t.Error("corrupt history should load empty")
	}
}

func TestReset(t *testing.T) {
	kv := store.NewMemoryKV()
	ctx := context.Background()
	c := newChat(t, &fakeBackend{}, kv)
	if _, err := c.Send(ctx, "explain redox"); err != nil {
		t.Fatal(err)
	}
	c.Reset(ctx)
	if len(c.History()) != 0 || c.Context().Subject != "" {
		t.Error("reset should clear history and context")
	}
	if _, err := kv.Get(ctx, HistoryKey); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("history key still present: %v", err)
	}
}

func TestSocraticForwarded(t *testing.T) {
	b := &fakeBackend{}
	c := newChat(t, b, store.NewMemoryKV())
	c.SetSocratic(true)
	if _, err := c.Send(context.Background(), "why is the sky blue"); err != nil {
		t.Fatal(err)
	}
	if !b.calls[0].Socratic {
		t.Error("socratic flag not forwarded")
	}
}

func TestLLMBackend(t *testing.T) {
	structured, _ := json.Marshal(Reply{
		ResponseText:  "Energy is conserved.",
		ActionSubject: "Physics",
		ActionTopic:   "energy",
		Action:        ActionNone,
	})

	t.Run("structured", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Content: structured})
		b := NewLLMBackend(mock)
		r, err := b.Reply(context.Background(), Request{
			History:  []Message{{Role: RoleUser, Text: "hi"}, {Role: RoleAssistant, Text: "hello"}},
			Socratic: true,
			Subject:  "Physics",
		})
		if err != nil {
			t.Fatal(err)
		}
		if r.ActionTopic != "energy" || r.VoiceText != r.ResponseText {
			t.Errorf("reply = %+v", r)
		}
		req := mock.Calls[0]
		if req.Schema == nil || req.Schema.Name != "tutor-reply" {
			t.Error("expected tutor-reply schema")
		}
		if len(req.Messages) != 2 || req.Messages[1].Role != llm.RoleAssistant {
			t.Errorf("messages = %+v", req.Messages)
		}
	})

	t.Run("plain text", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(`"Just text."`)})
		r, err := NewLLMBackend(mock).Reply(context.Background(), Request{})
		if err != nil {
			t.Fatal(err)
		}
		if r.ResponseText != "Just text." || r.Action != ActionNone {
			t.Errorf("reply = %+v", r)
		}
	})

	t.Run("invalid response reused", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrInvalidResponse{
			Content: json.RawMessage(`Here is my answer.`),
		}})
		r, err := NewLLMBackend(mock).Reply(context.Background(), Request{})
		if err != nil {
			t.Fatal(err)
		}
		if r.ResponseText != "Here is my answer." {
			t.Errorf("reply = %+v", r)
		}
	})

	t.Run("transport error", func(t *testing.T) {
		mock := llm.NewMockProvider()
		if _, err := NewLLMBackend(mock).Reply(context.Background(), Request{}); err == nil {
			t.Error("expected error")
		}
	})
}
