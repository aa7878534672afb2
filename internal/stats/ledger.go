package stats

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/edchat/internal/logger"
	"github.com/abhisek/edchat/internal/metrics"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/store"
)

// Key is the KV key the stats are stored under.
const Key = "stats"

// Ledger is the only writer of Stats. Every mutation is persisted; a failed
// read or write is logged and the ledger carries on in memory.
type Ledger struct {
	mu      sync.Mutex
	stats   Stats
	kv      store.KV
	log     *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(l *Ledger) { l.metrics = m }
}

// WithNow replaces the clock used for unlock times.
func WithNow(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// Open loads the stats from kv. Missing or unreadable stats start from
// Default.
func Open(ctx context.Context, kv store.KV, opts ...Option) *Ledger {
	l := &Ledger{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	if l.log == nil {
		l.log = logger.NewNop()
	}

	l.stats = Default()
	var loaded Stats
	switch err := store.GetJSON(ctx, kv, Key, &loaded); {
	case err == nil:
		l.stats = normalize(loaded)
	case errors.Is(err, store.ErrNotFound):
	default:
		l.log.Warn("failed to load stats, starting fresh", "error", err)
	}
	return l
}

func normalize(s Stats) Stats {
	if s.SubjectStats == nil {
		s.SubjectStats = make(map[string]SubjectStat)
	}
	if s.Achievements == nil {
		s.Achievements = make(map[string]time.Time)
	}
	return s
}

// Stats returns a snapshot.
func (l *Ledger) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats.clone()
}

// RecordSession adds a completed session's tallies.
func (l *Ledger) RecordSession(ctx context.Context, subject string, score session.Score) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordLocked(subject, score)
	l.persistLocked(ctx)
}

func (l *Ledger) recordLocked(subject string, score session.Score) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = GeneralSubject
	}
	l.stats.TotalCorrect += score.Correct
	l.stats.TotalAttempted += score.Total
	l.stats.TotalQuizzes++

	st := l.stats.SubjectStats[subject]
	st.Correct += score.Correct
	st.Attempted += score.Total
	l.stats.SubjectStats[subject] = st
}

// CheckAchievements unlocks every achievement whose rule holds for the
// current stats and score and returns the ones newly unlocked, in table
// order. Unlocks are never revoked.
func (l *Ledger) CheckAchievements(ctx context.Context, score session.Score) []Achievement {
	l.mu.Lock()
	defer l.mu.Unlock()
	unlocked := l.checkLocked(score)
	if len(unlocked) > 0 {
		l.persistLocked(ctx)
	}
	return unlocked
}

func (l *Ledger) checkLocked(score session.Score) []Achievement {
	var unlocked []Achievement
	now := l.now()
	for _, a := range Achievements {
		if l.stats.Has(a.ID) || !a.rule(&l.stats, score) {
			continue
		}
		l.stats.Achievements[a.ID] = now
		unlocked = append(unlocked, a)
		l.metrics.ObserveAchievement(a.ID)
		l.log.Info("achievement unlocked", "id", a.ID)
	}
	return unlocked
}

// Complete records a session and checks achievements against the updated
// stats in one step. It is the session engine's completion hook.
func (l *Ledger) Complete(ctx context.Context, subject string, score session.Score) []Achievement {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.recordLocked(subject, score)
	unlocked := l.checkLocked(score)
	l.persistLocked(ctx)
	return unlocked
}

// UpdateStreak applies a visit on today. Run it once per process start,
// before any session completes.
func (l *Ledger) UpdateStreak(ctx context.Context, today time.Time) StreakChange {
	l.mu.Lock()
	defer l.mu.Unlock()

	streak, change := NextStreak(l.stats.LastVisitDate, l.stats.StudyStreakDays, today)
	if change == StreakUnchanged {
		return change
	}
	l.stats.StudyStreakDays = streak
	l.stats.LastVisitDate = today.Format(DateLayout)
	l.persistLocked(ctx)
	return change
}

// Reset clears all stats and achievements.
func (l *Ledger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stats = Default()
	if err := l.kv.Delete(ctx, Key); err != nil {
		l.log.Warn("failed to delete stats", "error", err)
	}
}

func (l *Ledger) persistLocked(ctx context.Context) {
	if err := store.SetJSON(ctx, l.kv, Key, l.stats); err != nil {
		l.log.Warn("failed to persist stats", "error", err)
	}
}
