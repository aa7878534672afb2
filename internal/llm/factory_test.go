package llm

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/abhisek/edchat/internal/logger"
	"github.com/abhisek/edchat/internal/store"
)

func TestLoggingProvider_RecordsEvents(t *testing.T) {
	st, err := store.Open("file:llm_logging?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 12, OutputTokens: 3}},
		MockResponse{Err: &ErrRateLimit{}},
	)
	p := WithLogging(mock, "mock", st.EventRepo(), logger.NewNop())

	ctx := WithPurpose(context.Background(), "quiz-gen")
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("second call: expected error")
	}

	events, err := st.EventRepo().QueryLLMEvents(context.Background(), store.QueryOpts{Limit: 10})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}

	var ok, failed int
	for _, ev := range events {
		if ev.Purpose != "quiz-gen" {
			t.Errorf("purpose = %q, want quiz-gen", ev.Purpose)
		}
		if ev.Provider != "mock" {
			t.Errorf("provider = %q, want mock", ev.Provider)
		}
		if ev.Success {
			ok++
			if ev.InputTokens != 12 || ev.OutputTokens != 3 {
				t.Errorf("tokens = %d/%d, want 12/3", ev.InputTokens, ev.OutputTokens)
			}
		} else {
			failed++
			if ev.ErrorMessage == "" {
				t.Error("failed event has no error message")
			}
		}
	}
	if ok != 1 || failed != 1 {
		t.Errorf("ok=%d failed=%d, want 1/1", ok, failed)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)
	start := time.Now()
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not applied")
	}
	if p.ModelID() != "slow" {
		t.Errorf("ModelID() = %q", p.ModelID())
	}
}

func TestNewProviderFromEnv(t *testing.T) {
	for _, k := range []string{
		"EDCHAT_LLM_PROVIDER", "EDCHAT_ANTHROPIC_API_KEY", "EDCHAT_OPENAI_API_KEY",
		"EDCHAT_GEMINI_API_KEY", "EDCHAT_OPENROUTER_API_KEY",
		"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
	} {
		t.Setenv(k, "")
	}

	t.Run("no credentials", func(t *testing.T) {
		_, err := NewProviderFromEnv(context.Background(), nil, nil)
		if !errors.Is(err, ErrNoCredentials) {
			t.Fatalf("err = %v, want ErrNoCredentials", err)
		}
	})

	t.Run("discovered openai key", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		p, err := NewProviderFromEnv(context.Background(), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "gpt-4o-mini" {
			t.Errorf("ModelID() = %q, want gpt-4o-mini", p.ModelID())
		}
	})

	t.Run("explicit openrouter", func(t *testing.T) {
		t.Setenv("EDCHAT_LLM_PROVIDER", "openrouter")
		t.Setenv("EDCHAT_OPENROUTER_API_KEY", "sk-or-test")
		p, err := NewProviderFromEnv(context.Background(), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "google/gemini-2.0-flash-exp" {
			t.Errorf("ModelID() = %q", p.ModelID())
		}
	})

	t.Run("mock", func(t *testing.T) {
		t.Setenv("EDCHAT_LLM_PROVIDER", "mock")
		p, err := NewProviderFromEnv(context.Background(), nil, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.ModelID() != "mock" {
			t.Errorf("ModelID() = %q", p.ModelID())
		}
	})
}

func TestLookupCost(t *testing.T) {
	tests := []struct {
		model string
		found bool
	}{
		{"gpt-4o-mini", true},
		{"google/gemini-2.0-flash-exp", true},
		{"openai/gpt-4.1-mini", true},
		{"some-local-model", false},
	}
	for _, tt := range tests {
		if got := LookupCost(tt.model) != nil; got != tt.found {
			t.Errorf("LookupCost(%q) found = %v, want %v", tt.model, got, tt.found)
		}
	}

	c := LookupCost("gpt-4o-mini")
	if got := c.Cost(1_000_000, 1_000_000); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("Cost = %v, want 0.75", got)
	}
}

func TestResponseText(t *testing.T) {
	tests := []struct {
		content string
		want    string
	}{
		{`plain words`, "plain words"},
		{`"quoted"`, "quoted"},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tt := range tests {
		r := &Response{Content: json.RawMessage(tt.content)}
		if got := r.Text(); got != tt.want {
			t.Errorf("Text(%s) = %q, want %q", tt.content, got, tt.want)
		}
	}
}
