package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/store"
)

var day = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name       string
		lastVisit  string
		streak     int
		wantStreak int
		wantChange StreakChange
	}{
		{"same day", "2026-03-10", 4, 4, StreakUnchanged},
		{"yesterday", "2026-03-09", 4, 5, StreakExtended},
		{"three days ago", "2026-03-07", 4, 1, StreakReset},
		{"first visit", "", 0, 1, StreakReset},
		{"future date", "2026-03-11", 4, 1, StreakReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, change := NextStreak(tt.lastVisit, tt.streak, day)
			assert.Equal(t, tt.wantStreak, got)
			assert.Equal(t, tt.wantChange, change)
		})
	}
}

func TestNextStreak_MonthBoundary(t *testing.T) {
	first := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	got, change := NextStreak("2026-02-28", 2, first)
	assert.Equal(t, 3, got)
	assert.Equal(t, StreakExtended, change)
}

func newLedger(t *testing.T, kv store.KV) *Ledger {
	t.Helper()
	return Open(context.Background(), kv, WithNow(func() time.Time { return day }))
}

func TestLedger_RecordSession(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	l := newLedger(t, kv)

	l.RecordSession(ctx, "Physics", session.Score{Correct: 3, Total: 5, Percentage: 60})
	l.RecordSession(ctx, "", session.Score{Correct: 1, Total: 2, Percentage: 50})

	s := l.Stats()
	assert.Equal(t, 4, s.TotalCorrect)
	assert.Equal(t, 7, s.TotalAttempted)
	assert.Equal(t, 2, s.TotalQuizzes)
	assert.Equal(t, SubjectStat{Correct: 3, Attempted: 5}, s.SubjectStats["Physics"])
	assert.Equal(t, SubjectStat{Correct: 1, Attempted: 2}, s.SubjectStats[GeneralSubject])

	// Persisted: a fresh ledger over the same store sees the same stats.
	reloaded := newLedger(t, kv).Stats()
	assert.Equal(t, s.TotalQuizzes, reloaded.TotalQuizzes)
	assert.Equal(t, s.SubjectStats, reloaded.SubjectStats)
}

func TestLedger_CompleteUnlocksAgainstPostIncrementStats(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, store.NewMemoryKV())

	unlocked := l.Complete(ctx, "Biology", session.Score{Correct: 5, Total: 5, Percentage: 100})
	ids := achievementIDs(unlocked)
	assert.Equal(t, []string{"first-quiz", "perfect-score"}, ids)

	// Nothing new on a second, imperfect session.
	unlocked = l.Complete(ctx, "Biology", session.Score{Correct: 1, Total: 5, Percentage: 20})
	assert.Empty(t, unlocked)

	// A second perfect score does not unlock twice.
	unlocked = l.Complete(ctx, "Biology", session.Score{Correct: 2, Total: 2, Percentage: 100})
	assert.Empty(t, unlocked)

	s := l.Stats()
	assert.True(t, s.Has("first-quiz"))
	assert.Equal(t, day, s.Achievements["perfect-score"])
}

func TestLedger_QuizCountThresholds(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, store.NewMemoryKV())

	var all []string
	for range 10 {
		all = append(all, achievementIDs(l.Complete(ctx, "History", session.Score{Correct: 0, Total: 3}))...)
	}
	assert.Equal(t, []string{"first-quiz", "quiz-5", "quiz-10"}, all)
}

func TestLedger_AccuracyMaster(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, store.NewMemoryKV())

	// 45/49 is above 90% but below the attempt minimum.
	l.RecordSession(ctx, "Math", session.Score{Correct: 45, Total: 49})
	assert.NotContains(t, achievementIDs(l.CheckAchievements(ctx, session.Score{})), "accuracy-master")

	unlocked := l.Complete(ctx, "Math", session.Score{Correct: 1, Total: 1, Percentage: 100})
	assert.Contains(t, achievementIDs(unlocked), "accuracy-master")
}

func TestLedger_StreakAchievements(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, store.NewMemoryKV())

	start := day
	for i := range 7 {
		l.UpdateStreak(ctx, start.AddDate(0, 0, i))
	}
	assert.Equal(t, 7, l.Stats().StudyStreakDays)

	unlocked := achievementIDs(l.Complete(ctx, "", session.Score{Correct: 0, Total: 1}))
	assert.Equal(t, []string{"first-quiz", "streak-3", "streak-7"}, unlocked)

	// A gap resets the streak but never revokes achievements.
	assert.Equal(t, StreakReset, l.UpdateStreak(ctx, start.AddDate(0, 0, 20)))
	s := l.Stats()
	assert.Equal(t, 1, s.StudyStreakDays)
	assert.True(t, s.Has("streak-7"))
}

func TestLedger_UpdateStreakSameDayIsNoop(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, store.NewMemoryKV())

	assert.Equal(t, StreakReset, l.UpdateStreak(ctx, day))
	assert.Equal(t, StreakUnchanged, l.UpdateStreak(ctx, day.Add(5*time.Hour)))
	assert.Equal(t, 1, l.Stats().StudyStreakDays)
}

func TestLedger_Reset(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	l := newLedger(t, kv)
	l.Complete(ctx, "Physics", session.Score{Correct: 1, Total: 1})

	l.Reset(ctx)
	assert.Equal(t, 0, l.Stats().TotalQuizzes)
	_, err := kv.Get(ctx, Key)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

// brokenKV fails every operation.
type brokenKV struct{}

var errBroken = errors.New("disk full")

func (brokenKV) Get(context.Context, string) ([]byte, error) { return nil, errBroken }
func (brokenKV) Set(context.Context, string, []byte) error   { return errBroken }
func (brokenKV) Delete(context.Context, string) error        { return errBroken }
func (brokenKV) Clear(context.Context) error                 { return errBroken }

func TestLedger_DegradesOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	l := newLedger(t, brokenKV{})

	unlocked := l.Complete(ctx, "Physics", session.Score{Correct: 1, Total: 1, Percentage: 100})
	require.NotEmpty(t, unlocked)
	assert.Equal(t, 1, l.Stats().TotalQuizzes)
}

func TestLedger_CorruptStoredStats(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	require.NoError(t, kv.Set(ctx, Key, []byte("{not json")))

	l := newLedger(t, kv)
	assert.Equal(t, Default(), l.Stats())
}

func TestLookup(t *testing.T) {
	a, ok := Lookup("streak-30")
	require.True(t, ok)
	assert.Equal(t, RarityLegendary, a.Rarity)

	_, ok = Lookup("nope")
	assert.False(t, ok)
}

func achievementIDs(as []Achievement) []string {
	var ids []string
	for _, a := range as {
		ids = append(ids, a.ID)
	}
	return ids
}
