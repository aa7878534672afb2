// Package study ties the chat, the extraction pipeline, the session engine
// and the stats ledger together for the TUI and the CLI.
package study

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/edchat/internal/chat"
	"github.com/abhisek/edchat/internal/config"
	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/logger"
	"github.com/abhisek/edchat/internal/metrics"
	"github.com/abhisek/edchat/internal/pipeline"
	"github.com/abhisek/edchat/internal/prefs"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/store"
)

// Services holds the long-lived collaborators shared by every screen.
type Services struct {
	Chat     *chat.Chat
	Pipeline *pipeline.Pipeline
	Ledger   *stats.Ledger
	// Sessions is nil when session history is unavailable.
	Sessions store.SessionRepo
	KV       store.KV
	Metrics  *metrics.Metrics
	Log      *logger.Logger
	Quiz     config.QuizConfig

	// LLMReady is false when no provider is configured; the pipeline then
	// serves corpus and fallback content only.
	LLMReady bool

	// ExportDir receives exported session files.
	ExportDir string

	mu    sync.Mutex
	prefs prefs.Prefs
}

// LoadPrefs reads stored preferences and applies the socratic flag to the
// chat. Call it once after constructing Services.
func (s *Services) LoadPrefs(ctx context.Context) {
	p, err := prefs.Load(ctx, s.KV, prefs.Defaults(s.Quiz))
	if err != nil {
		s.log().Warn("failed to load preferences", "error", err)
	}
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
	if s.Chat != nil {
		s.Chat.SetSocratic(p.Socratic)
	}
}

// Prefs returns the current preferences.
func (s *Services) Prefs() prefs.Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prefs.Normalize()
}

// SavePrefs stores p and applies it.
func (s *Services) SavePrefs(ctx context.Context, p prefs.Prefs) error {
	p = p.Normalize()
	s.mu.Lock()
	s.prefs = p
	s.mu.Unlock()
	if s.Chat != nil {
		s.Chat.SetSocratic(p.Socratic)
	}
	return prefs.Save(ctx, s.KV, p)
}

// Request builds a pipeline request from the current preferences.
func (s *Services) Request(kind content.Kind, subject, topic string, gen uint64) pipeline.Request {
	p := s.Prefs()
	return pipeline.Request{
		Kind:       kind,
		Subject:    subject,
		Topic:      topic,
		Difficulty: p.Difficulty,
		Count:      p.QuestionCount,
		Minimum:    min(s.Quiz.MinimumValid, p.QuestionCount),
		Generation: gen,
	}
}

// NewEngine creates a session engine whose completion hook delivers the
// summary on done. done should be buffered; a full channel drops the
// summary with a warning.
func (s *Services) NewEngine(done chan<- session.Summary) *session.Engine {
	return session.NewEngine(
		session.WithGrace(s.Quiz.GraceDelay),
		session.OnExpire(func(gen uint64) {
			s.Metrics.ObserveSession(metrics.SessionTimedOut)
			s.log().Info("session time expired", "generation", gen)
		}),
		session.OnComplete(func(sum session.Summary) {
			select {
			case done <- sum:
			default:
				s.log().Warn("dropped session summary", "session", sum.State.ID)
			}
		}),
	)
}

// Completion is the outcome of recording a finished session.
type Completion struct {
	Summary  session.Summary
	Unlocked []stats.Achievement
	Stats    stats.Stats
	// Export is the plain-text rendition of the graded session.
	Export string
}

// Record applies a submitted session to the stats ledger and the session
// history. Storage failures are logged; the completion is returned either
// way.
func (s *Services) Record(ctx context.Context, sum session.Summary) Completion {
	s.Metrics.ObserveSession(metrics.SessionSubmitted)

	unlocked := s.Ledger.Complete(ctx, sum.State.Info.Subject, sum.Score)
	export := session.Export(sum.State.Info, sum.State.Questions, sum.State.Answers)

	if s.Sessions != nil {
		rec := &store.SessionRecord{
			ID:          sum.State.ID,
			Kind:        string(sum.State.Info.Kind),
			Subject:     sum.State.Info.Subject,
			Topic:       sum.State.Info.Topic,
			Correct:     sum.Score.Correct,
			Total:       sum.Score.Total,
			Percentage:  sum.Score.Percentage,
			Export:      export,
			CompletedAt: time.Now(),
		}
		if err := s.Sessions.Save(ctx, rec); err != nil {
			s.log().Warn("failed to save session", "session", rec.ID, "error", err)
		}
	}

	s.log().Info("session recorded",
		"session", sum.State.ID,
		"subject", sum.State.Info.Subject,
		"correct", sum.Score.Correct,
		"total", sum.Score.Total,
		"timed_out", sum.TimedOut,
		"unlocked", len(unlocked),
	)
	return Completion{Summary: sum, Unlocked: unlocked, Stats: s.Ledger.Stats(), Export: export}
}

// WriteExport writes text to a new file in dir (ExportDir when empty) and
// returns its path.
func (s *Services) WriteExport(dir, id, text string) (string, error) {
	if dir == "" {
		dir = s.ExportDir
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, ExportName(id, time.Now()))
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	return path, nil
}

// ExportName returns the file name for an exported session.
func ExportName(id string, at time.Time) string {
	short := strings.ReplaceAll(id, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	if short == "" {
		short = "session"
	}
	return fmt.Sprintf("edchat-%s-%s.txt", at.Format("20060102-150405"), short)
}

func (s *Services) log() *logger.Logger {
	if s.Log == nil {
		return logger.NewNop()
	}
	return s.Log
}
