package session

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/edchat/internal/content"
)

// DefaultGrace is the pause between "time's up" and the automatic submit.
const DefaultGrace = 2 * time.Second

// Clock abstracts time for the countdown.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// Stopper cancels a scheduled callback.
type Stopper interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Stopper { return time.AfterFunc(d, f) }

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithGrace sets the delay between expiry and auto-submit.
func WithGrace(d time.Duration) Option {
	return func(e *Engine) { e.grace = d }
}

// OnComplete registers the hook run exactly once per submitted session.
func OnComplete(fn func(Summary)) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// OnExpire registers a hook run when the countdown reaches zero, before the
// grace delay. It receives the session generation.
func OnExpire(fn func(gen uint64)) Option {
	return func(e *Engine) { e.onExpire = fn }
}

// Engine owns the session state machine. All methods are safe for
// concurrent use; hooks run outside the lock.
type Engine struct {
	mu sync.Mutex

	phase    Phase
	state    *State
	gen      uint64
	score    Score
	outcomes []Outcome

	expired   bool
	countdown Stopper
	graceT    Stopper

	clock      Clock
	grace      time.Duration
	onComplete func(Summary)
	onExpire   func(uint64)
}

// NewEngine creates an idle engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{clock: realClock{}, grace: DefaultGrace}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins a new session, replacing any previous one. An in-progress
// session is abandoned without scoring. It returns the new generation.
func (e *Engine) Start(info Info, questions []content.Question, timed bool, budget time.Duration) (uint64, error) {
	if len(questions) == 0 {
		return 0, ErrEmptySession
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopTimersLocked()
	e.gen++
	e.phase = PhaseInProgress
	e.score = Score{}
	e.outcomes = nil
	e.expired = false
	e.state = &State{
		ID:        uuid.NewString(),
		Info:      info,
		Questions: withUniqueIDs(questions),
		Answers:   make(map[int]int, len(questions)),
		StartedAt: e.clock.Now(),
		Timed:     timed && budget > 0,
	}
	if e.state.Timed {
		e.state.TimeLimit = budget
		gen := e.gen
		e.countdown = e.clock.AfterFunc(budget, func() { e.TimeExpired(gen) })
	}
	return e.gen, nil
}

// Answer records option for question id, overwriting any earlier choice.
func (e *Engine) Answer(id, option int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	q, ok := e.questionLocked(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
	}
	if option < 0 || option >= len(q.Options) {
		return fmt.Errorf("%w: %d of %d", ErrOptionOutOfRange, option, len(q.Options))
	}
	e.state.Answers[id] = option
	return nil
}

// Clear removes the answer to question id.
func (e *Engine) Clear(id int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.phase != PhaseInProgress {
		return ErrNotInProgress
	}
	if _, ok := e.questionLocked(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownQuestion, id)
	}
	delete(e.state.Answers, id)
	return nil
}

// TimeExpired handles the countdown reaching zero for generation gen. It
// acts at most once per session, and only for the current in-progress
// generation; the submit follows after the grace delay.
func (e *Engine) TimeExpired(gen uint64) bool {
	e.mu.Lock()
	if gen != e.gen || e.phase != PhaseInProgress || e.expired {
		e.mu.Unlock()
		return false
	}
	e.expired = true
	e.countdown = nil
	e.graceT = e.clock.AfterFunc(e.grace, func() { e.submit(gen, true) })
	hook := e.onExpire
	e.mu.Unlock()

	if hook != nil {
		hook(gen)
	}
	return true
}

// Submit scores the current session. Calling it again before the next
// Start returns the same score and does not rerun the completion hook.
func (e *Engine) Submit() (Score, error) {
	e.mu.Lock()
	gen := e.gen
	e.mu.Unlock()
	return e.submit(gen, false)
}

func (e *Engine) submit(gen uint64, timedOut bool) (Score, error) {
	e.mu.Lock()
	if gen != e.gen {
		// A newer session started while the grace timer was pending.
		e.mu.Unlock()
		return Score{}, ErrNotInProgress
	}
	switch e.phase {
	case PhaseSubmitted:
		s := e.score
		e.mu.Unlock()
		return s, nil
	case PhaseIdle:
		e.mu.Unlock()
		return Score{}, ErrNotInProgress
	}

	e.stopTimersLocked()
	e.outcomes, e.score = grade(e.state)
	e.phase = PhaseSubmitted

	summary := Summary{
		State:    e.snapshotLocked(),
		Score:    e.score,
		Outcomes: append([]Outcome(nil), e.outcomes...),
		TimedOut: timedOut,
		Elapsed:  e.clock.Now().Sub(e.state.StartedAt),
	}
	hook := e.onComplete
	e.mu.Unlock()

	if hook != nil {
		hook(summary)
	}
	return summary.Score, nil
}

// withUniqueIDs copies questions, renumbering them 1..n unless their IDs
// are already distinct.
func withUniqueIDs(questions []content.Question) []content.Question {
	out := append([]content.Question(nil), questions...)
	seen := make(map[int]bool, len(out))
	for _, q := range out {
		if seen[q.ID] {
			for i := range out {
				out[i].ID = i + 1
			}
			return out
		}
		seen[q.ID] = true
	}
	return out
}

// grade marks each question; unanswered counts as incorrect.
func grade(s *State) ([]Outcome, Score) {
	outcomes := make([]Outcome, len(s.Questions))
	var correct int
	for i, q := range s.Questions {
		o := Outcome{QuestionID: q.ID, Chosen: -1}
		if a, ok := s.Answers[q.ID]; ok {
			o.Chosen = a
			o.Correct = a == q.CorrectIndex
		}
		if o.Correct {
			correct++
		}
		outcomes[i] = o
	}
	score := Score{Correct: correct, Total: len(s.Questions)}
	if score.Total > 0 {
		score.Percentage = int(math.Round(float64(correct) * 100 / float64(score.Total)))
	}
	return outcomes, score
}

// Score returns the last computed score, or zeros before any submission.
func (e *Engine) Score() Score {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

// Outcomes returns per-question results of the last submission.
func (e *Engine) Outcomes() []Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Outcome(nil), e.outcomes...)
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

// Generation returns the current session generation. It changes on every
// Start; zero means no session has started.
func (e *Engine) Generation() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gen
}

// Accept reports whether a result requested at generation gen is still
// current. Results from before a newer Start must be dropped.
func (e *Engine) Accept(gen uint64) bool {
	return gen == e.Generation()
}

// Expired reports whether the countdown ran out for the current session.
func (e *Engine) Expired() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.expired
}

// State returns a copy of the current session, or nil when idle.
func (e *Engine) State() *State {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return nil
	}
	s := e.snapshotLocked()
	return &s
}

// Remaining returns the time left on the countdown, or zero when untimed
// or not in progress.
func (e *Engine) Remaining() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.phase != PhaseInProgress || e.state == nil || !e.state.Timed {
		return 0
	}
	left := e.state.Deadline().Sub(e.clock.Now())
	if left < 0 {
		return 0
	}
	return left
}

// Export renders the current session as plain text.
func (e *Engine) Export() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == nil {
		return "", ErrNoSession
	}
	var answers map[int]int
	if e.phase == PhaseSubmitted {
		answers = e.state.Answers
	}
	return Export(e.state.Info, e.state.Questions, answers), nil
}

func (e *Engine) questionLocked(id int) (content.Question, bool) {
	for _, q := range e.state.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return content.Question{}, false
}

func (e *Engine) snapshotLocked() State {
	s := *e.state
	s.Questions = append([]content.Question(nil), e.state.Questions...)
	s.Answers = make(map[int]int, len(e.state.Answers))
	for k, v := range e.state.Answers {
		s.Answers[k] = v
	}
	return s
}

func (e *Engine) stopTimersLocked() {
	if e.countdown != nil {
		e.countdown.Stop()
		e.countdown = nil
	}
	if e.graceT != nil {
		e.graceT.Stop()
		e.graceT = nil
	}
}
