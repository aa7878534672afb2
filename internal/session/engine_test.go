package session

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/edchat/internal/content"
)

// fakeClock runs scheduled callbacks only when advanced.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	tasks []*fakeTask
}

type fakeTask struct {
	at      time.Time
	f       func()
	stopped bool
}

func (t *fakeTask) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTask{at: c.now.Add(d), f: f}
	c.tasks = append(c.tasks, t)
	return t
}

// Advance moves time forward and runs due callbacks in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTask
	rest := c.tasks[:0]
	for _, t := range c.tasks {
		if !t.stopped && !t.at.After(c.now) {
			due = append(due, t)
		} else if !t.stopped {
			rest = append(rest, t)
		}
	}
	c.tasks = rest
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

func testQuestions() []content.Question {
	return []content.Question{
		{ID: 1, Question: "2+2?", Options: []string{"3", "4", "5"}, CorrectIndex: 1, Explanation: "Basic addition."},
		{ID: 2, Question: "Capital of France?", Options: []string{"Paris", "Rome"}, CorrectIndex: 0},
		{ID: 3, Question: "H2O is?", Options: []string{"Salt", "Water", "Air", "Fire"}, CorrectIndex: 1},
	}
}

func TestEngine_InitialState(t *testing.T) {
	e := NewEngine()
	if e.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v, want idle", e.Phase())
	}
	if e.Score() != (Score{}) {
		t.Errorf("Score() = %+v, want zeros", e.Score())
	}
	if _, err := e.Submit(); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Submit from idle: err = %v, want ErrNotInProgress", err)
	}
	if err := e.Answer(1, 0); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Answer from idle: err = %v, want ErrNotInProgress", err)
	}
	if _, err := e.Export(); !errors.Is(err, ErrNoSession) {
		t.Errorf("Export from idle: err = %v, want ErrNoSession", err)
	}
}

func TestEngine_StartRejectsEmpty(t *testing.T) {
	e := NewEngine()
	if _, err := e.Start(Info{}, nil, false, 0); !errors.Is(err, ErrEmptySession) {
		t.Fatalf("err = %v, want ErrEmptySession", err)
	}
	if e.Phase() != PhaseIdle {
		t.Error("failed start changed phase")
	}
}

func TestEngine_AnswerOverwrites(t *testing.T) {
	e := NewEngine()
	if _, err := e.Start(Info{}, testQuestions(), false, 0); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := e.Answer(3, 1); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if err := e.Answer(3, 2); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if got := e.State().Answers[3]; got != 2 {
		t.Errorf("Answers[3] = %d, want 2", got)
	}
	if e.Phase() != PhaseInProgress {
		t.Error("Answer changed phase")
	}
}

func TestEngine_AnswerErrors(t *testing.T) {
	e := NewEngine()
	_, _ = e.Start(Info{}, testQuestions(), false, 0)

	if err := e.Answer(99, 0); !errors.Is(err, ErrUnknownQuestion) {
		t.Errorf("unknown id: err = %v", err)
	}
	if err := e.Answer(2, 2); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("out of range: err = %v", err)
	}
	if err := e.Answer(2, -1); !errors.Is(err, ErrOptionOutOfRange) {
		t.Errorf("negative: err = %v", err)
	}
}

func TestEngine_SubmitScoresAndIsIdempotent(t *testing.T) {
	var calls int
	var got Summary
	e := NewEngine(OnComplete(func(s Summary) {
		calls++
		got = s
	}))
	_, _ = e.Start(Info{Subject: "Mixed"}, testQuestions(), false, 0)
	_ = e.Answer(1, 1) // correct
	_ = e.Answer(2, 1) // wrong
	// 3 unanswered

	s1, err := e.Submit()
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	want := Score{Correct: 1, Total: 3, Percentage: 33}
	if s1 != want {
		t.Errorf("Score = %+v, want %+v", s1, want)
	}

	s2, err := e.Submit()
	if err != nil {
		t.Fatalf("second Submit: %v", err)
	}
	if s2 != s1 || e.Score() != s1 {
		t.Error("second Submit changed the score")
	}
	if calls != 1 {
		t.Errorf("completion hook ran %d times, want 1", calls)
	}
	if got.State.Info.Subject != "Mixed" || got.TimedOut {
		t.Errorf("unexpected summary %+v", got)
	}
	if len(got.Outcomes) != 3 || got.Outcomes[2].Answered() {
		t.Errorf("unexpected outcomes %+v", got.Outcomes)
	}
	if err := e.Answer(1, 0); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("Answer after submit: err = %v", err)
	}
}

func TestEngine_RestartAfterSubmit(t *testing.T) {
	var calls int
	e := NewEngine(OnComplete(func(Summary) { calls++ }))
	g1, _ := e.Start(Info{}, testQuestions(), false, 0)
	_, _ = e.Submit()

	g2, err := e.Start(Info{}, testQuestions()[:1], false, 0)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if g2 == g1 {
		t.Error("generation did not change")
	}
	if e.Score() != (Score{}) {
		t.Error("score not reset on start")
	}
	if len(e.State().Answers) != 0 {
		t.Error("answers carried over")
	}
	_ = e.Answer(1, 1)
	s, _ := e.Submit()
	if s != (Score{Correct: 1, Total: 1, Percentage: 100}) || !s.Perfect() {
		t.Errorf("Score = %+v", s)
	}
	if calls != 2 {
		t.Errorf("hook calls = %d, want 2", calls)
	}
}

func TestEngine_Accept(t *testing.T) {
	e := NewEngine()
	requested := e.Generation()
	if !e.Accept(requested) {
		t.Fatal("current generation should be accepted")
	}

	_, _ = e.Start(Info{}, testQuestions(), false, 0)
	if e.Accept(requested) {
		t.Error("result requested before a newer start should be stale")
	}
}

func TestEngine_TimedAutoSubmit(t *testing.T) {
	clock := newFakeClock()
	var expiredGen uint64
	done := make(chan Summary, 1)
	e := NewEngine(
		WithClock(clock),
		WithGrace(2*time.Second),
		OnExpire(func(gen uint64) { expiredGen = gen }),
		OnComplete(func(s Summary) { done <- s }),
	)
	gen, _ := e.Start(Info{}, testQuestions(), true, 30*time.Second)
	_ = e.Answer(1, 1)

	clock.Advance(10 * time.Second)
	if got := e.Remaining(); got != 20*time.Second {
		t.Errorf("Remaining() = %v, want 20s", got)
	}

	clock.Advance(20 * time.Second)
	if expiredGen != gen || !e.Expired() {
		t.Fatal("countdown did not expire")
	}
	if e.Phase() != PhaseInProgress {
		t.Fatal("submit should wait for the grace delay")
	}

	clock.Advance(2 * time.Second)
	select {
	case s := <-done:
		if !s.TimedOut || s.Score.Correct != 1 {
			t.Errorf("unexpected summary %+v", s)
		}
	default:
		t.Fatal("auto-submit did not run")
	}
	if e.Phase() != PhaseSubmitted {
		t.Errorf("Phase() = %v, want submitted", e.Phase())
	}
}

func TestEngine_TimeExpiredFiresOnce(t *testing.T) {
	clock := newFakeClock()
	var expiries int
	e := NewEngine(WithClock(clock), OnExpire(func(uint64) { expiries++ }))
	gen, _ := e.Start(Info{}, testQuestions(), true, time.Minute)

	clock.Advance(time.Minute)
	if e.TimeExpired(gen) {
		t.Error("second expiry should be ignored")
	}
	if expiries != 1 {
		t.Errorf("expiries = %d, want 1", expiries)
	}
}

func TestEngine_SubmitCancelsTimer(t *testing.T) {
	clock := newFakeClock()
	var calls int
	e := NewEngine(WithClock(clock), OnComplete(func(Summary) { calls++ }))
	_, _ = e.Start(Info{}, testQuestions(), true, time.Minute)
	_, _ = e.Submit()

	clock.Advance(time.Hour)
	if e.Expired() {
		t.Error("timer fired after submit")
	}
	if calls != 1 {
		t.Errorf("hook calls = %d, want 1", calls)
	}
}

func TestEngine_StaleTimerDoesNotSubmitNewSession(t *testing.T) {
	clock := newFakeClock()
	var calls int
	e := NewEngine(WithClock(clock), WithGrace(5*time.Second), OnComplete(func(Summary) { calls++ }))

	old, _ := e.Start(Info{}, testQuestions(), true, time.Minute)
	clock.Advance(time.Minute) // expired, grace pending

	// New session starts during the grace delay.
	_, _ = e.Start(Info{}, testQuestions(), true, time.Hour)
	clock.Advance(10 * time.Second)

	if e.Phase() != PhaseInProgress {
		t.Errorf("Phase() = %v, want in-progress", e.Phase())
	}
	if calls != 0 {
		t.Errorf("stale grace timer submitted the new session")
	}
	if e.TimeExpired(old) {
		t.Error("stale generation expiry accepted")
	}
}

func TestEngine_UntimedHasNoCountdown(t *testing.T) {
	clock := newFakeClock()
	e := NewEngine(WithClock(clock))
	_, _ = e.Start(Info{}, testQuestions(), false, time.Minute)
	clock.Advance(time.Hour)
	if e.Expired() || e.Remaining() != 0 {
		t.Error("untimed session should not expire")
	}
}

func TestEngine_DuplicateIDsRenumbered(t *testing.T) {
	qs := testQuestions()
	for i := range qs {
		qs[i].ID = 0
	}
	e := NewEngine()
	_, _ = e.Start(Info{}, qs, false, 0)
	if err := e.Answer(3, 1); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if qs[0].ID != 0 {
		t.Error("Start modified the caller's slice")
	}
}

func TestEngine_Export(t *testing.T) {
	e := NewEngine()
	_, _ = e.Start(Info{Subject: "General", Topic: "mixed"}, testQuestions(), false, 0)
	_ = e.Answer(1, 1)

	before, err := e.Export()
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if strings.Contains(before, "Your answer") {
		t.Error("in-progress export should not show answers")
	}

	_, _ = e.Submit()
	out, _ := e.Export()
	for _, want := range []string{
		"Quiz: General - mixed\n",
		"1. 2+2?\n   A. 3\n   B. 4\n   C. 5\nAnswer: B\nYour answer: B (correct)\nExplanation: Basic addition.\n",
		"2. Capital of France?\n   A. Paris\n   B. Rome\nAnswer: A\nYour answer: none\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("export missing %q:\n%s", want, out)
		}
	}
	again, _ := e.Export()
	if again != out {
		t.Error("export is not deterministic")
	}
}

func TestTimeBudget(t *testing.T) {
	tests := []struct {
		count int
		diff  content.Difficulty
		want  time.Duration
	}{
		{5, content.DifficultyEasy, 225 * time.Second},
		{5, content.DifficultyMedium, 5 * time.Minute},
		{10, content.DifficultyHard, 15 * time.Minute},
		{3, "unknown", 3 * time.Minute},
		{0, content.DifficultyMedium, time.Minute},
	}
	for _, tt := range tests {
		if got := TimeBudget(tt.count, tt.diff); got != tt.want {
			t.Errorf("TimeBudget(%d, %q) = %v, want %v", tt.count, tt.diff, got, tt.want)
		}
	}
}
