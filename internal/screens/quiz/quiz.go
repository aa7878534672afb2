// Package quiz is the timed multiple-choice session screen.
package quiz

import (
	"context"
	"errors"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/metrics"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/screen"
	"github.com/abhisek/edchat/internal/screens/summary"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/study"
	"github.com/abhisek/edchat/internal/ui/layout"
)

// QuizScreen runs one quiz session.
type QuizScreen struct {
	svc     *study.Services
	subject string
	topic   string

	engine *session.Engine
	done   chan session.Summary
	ctx    context.Context
	cancel context.CancelFunc

	loading bool
	notice  string
	errMsg  string

	current int
	cursor  int

	confirmSubmit bool
	confirmQuit   bool
	submitting    bool

	remaining time.Duration
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.EscapeHandler = (*QuizScreen)(nil)

// New creates a quiz screen for the given subject and topic. Either may be
// empty.
func New(svc *study.Services, subject, topic string) *QuizScreen {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan session.Summary, 1)
	return &QuizScreen{
		svc:     svc,
		subject: subject,
		topic:   topic,
		engine:  svc.NewEngine(done),
		done:    done,
		ctx:     ctx,
		cancel:  cancel,
		loading: true,
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	return s.load()
}

func (s *QuizScreen) Title() string {
	return "Quiz"
}

func (s *QuizScreen) HandlesEscape() bool {
	return true
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.loading || s.errMsg != "":
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	case s.confirmQuit || s.confirmSubmit:
		return []layout.KeyHint{
			{Key: "Y", Description: "Yes"},
			{Key: "N", Description: "No"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Choose"},
		{Key: "Enter/A-F", Description: "Answer"},
		{Key: "←→", Description: "Question"},
		{Key: "S", Description: "Submit"},
		{Key: "Esc", Description: "Quit"},
	}
}

// load requests content tagged with the engine's current generation.
func (s *QuizScreen) load() tea.Cmd {
	req := s.svc.Request(content.KindQuiz, s.subject, s.topic, s.engine.Generation())
	ctx := s.ctx
	p := s.svc.Pipeline
	return func() tea.Msg {
		return contentReadyMsg{Result: p.Extract(ctx, req)}
	}
}

// waitForCompletion blocks until the engine reports a submitted session,
// then records it.
func (s *QuizScreen) waitForCompletion() tea.Cmd {
	ctx, done, svc := s.ctx, s.done, s.svc
	return func() tea.Msg {
		select {
		case sum := <-done:
			// Recording must finish even if the screen is being torn down.
			return completedMsg{Completion: svc.Record(context.WithoutCancel(ctx), sum)}
		case <-ctx.Done():
			return nil
		}
	}
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case contentReadyMsg:
		return s.handleReady(msg)

	case timerTickMsg:
		return s.handleTick()

	case completedMsg:
		return s, router.Replace(summary.New(s.svc, msg.Completion))

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *QuizScreen) handleReady(msg contentReadyMsg) (screen.Screen, tea.Cmd) {
	if !s.engine.Accept(msg.Result.Generation) {
		return s, nil
	}
	s.loading = false

	res := msg.Result
	qs := res.Set.Questions
	if res.Set.Kind.IsFlashcard() || len(qs) == 0 {
		s.errMsg = "No questions available for this topic."
		return s, nil
	}

	p := s.svc.Prefs()
	info := session.Info{Subject: s.subject, Topic: s.topic, Kind: content.KindQuiz}
	budget := session.TimeBudget(len(qs), p.Difficulty)
	if _, err := s.engine.Start(info, qs, p.Timed, budget); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.svc.Metrics.ObserveSession(metrics.SessionStarted)
	s.notice = strategyNote(res)
	s.current, s.cursor = 0, 0
	s.remaining = s.engine.Remaining()

	return s, tea.Batch(tickCmd(), s.waitForCompletion())
}

func (s *QuizScreen) handleTick() (screen.Screen, tea.Cmd) {
	if s.engine.Phase() != session.PhaseInProgress {
		return s, nil
	}
	s.remaining = s.engine.Remaining()
	return s, tickCmd()
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()

	if s.loading || s.errMsg != "" {
		if key == "esc" || s.errMsg != "" {
			s.cancel()
			return s, router.Pop()
		}
		return s, nil
	}

	if s.confirmQuit {
		switch key {
		case "y", "Y":
			s.cancel()
			return s, router.Pop()
		case "n", "N", "esc":
			s.confirmQuit = false
		}
		return s, nil
	}

	if s.confirmSubmit {
		switch key {
		case "y", "Y", "enter":
			s.confirmSubmit = false
			return s.submit()
		case "n", "N", "esc":
			s.confirmSubmit = false
		}
		return s, nil
	}

	if s.engine.Phase() != session.PhaseInProgress {
		return s, nil
	}

	q, ok := s.question()
	if !ok {
		return s, nil
	}

	switch key {
	case "esc":
		s.confirmQuit = true
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(q.Options)-1 {
			s.cursor++
		}
	case "left", "h", "p":
		s.move(-1)
	case "right", "l", "n":
		s.move(1)
	case "enter", "space":
		s.answer(q, s.cursor)
	case "x", "backspace":
		_ = s.engine.Clear(q.ID)
	case "s", "S":
		s.confirmSubmit = true
	default:
		if i, ok := optionKey(key); ok && i < len(q.Options) {
			s.cursor = i
			s.answer(q, i)
		}
	}
	return s, nil
}

func (s *QuizScreen) answer(q content.Question, option int) {
	if err := s.engine.Answer(q.ID, option); err != nil {
		return
	}
	s.move(1)
}

func (s *QuizScreen) move(delta int) {
	n := len(s.questions())
	next := s.current + delta
	if next < 0 || next >= n {
		return
	}
	s.current = next
	s.cursor = 0
	if q, ok := s.question(); ok {
		if chosen, answered := s.answers()[q.ID]; answered {
			s.cursor = chosen
		}
	}
}

func (s *QuizScreen) submit() (screen.Screen, tea.Cmd) {
	if _, err := s.engine.Submit(); err != nil && !errors.Is(err, session.ErrNotInProgress) {
		s.errMsg = err.Error()
		return s, nil
	}
	s.submitting = true
	return s, nil
}

func (s *QuizScreen) questions() []content.Question {
	st := s.engine.State()
	if st == nil {
		return nil
	}
	return st.Questions
}

func (s *QuizScreen) answers() map[int]int {
	st := s.engine.State()
	if st == nil {
		return nil
	}
	return st.Answers
}

func (s *QuizScreen) question() (content.Question, bool) {
	qs := s.questions()
	if s.current < 0 || s.current >= len(qs) {
		return content.Question{}, false
	}
	return qs[s.current], true
}

// optionKey maps "1".."6" and "a".."f" to option indexes.
func optionKey(key string) (int, bool) {
	if len(key) != 1 {
		return 0, false
	}
	switch c := key[0]; {
	case c >= '1' && c <= '6':
		return int(c - '1'), true
	case c >= 'a' && c <= 'f':
		return int(c - 'a'), true
	}
	return 0, false
}

// tickCmd returns a 1-second tick command.
func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return timerTickMsg(t)
	})
}
