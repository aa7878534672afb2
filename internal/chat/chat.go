// Package chat runs the tutor conversation: it keeps the transcript, tracks
// the subject and topic, and spots requests for a quiz or flashcards.
package chat

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/logger"
	"github.com/abhisek/edchat/internal/store"
	"github.com/abhisek/edchat/internal/topics"
)

// HistoryKey is the KV key of the transcript snapshot.
const HistoryKey = "chat:history"

// MaxHistory is the number of messages kept.
const MaxHistory = 50

// Role is the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one transcript entry.
type Message struct {
	ID   string    `json:"id"`
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Trigger is a request to start studying, detected from the user's words
// or the tutor's declared action.
type Trigger struct {
	Kind content.Kind
}

// Turn is the result of one Send.
type Turn struct {
	Reply   Reply
	Context topics.Context
	// Trigger is non-nil when the turn asked for a quiz or flashcards.
	Trigger *Trigger
	// Notice is a user-facing message when the tutor could not be reached.
	Notice string
}

var (
	quizPhrase      = regexp.MustCompile(`(?i)\b(?:quiz me|test me|give me a (?:quiz|test)|start (?:a |the )?quiz|practice questions)\b`)
	flashcardPhrase = regexp.MustCompile(`(?i)\bflash\s?cards?\b`)
)

// DetectTrigger looks for an explicit study request in user text.
func DetectTrigger(text string) *Trigger {
	switch {
	case flashcardPhrase.MatchString(text):
		return &Trigger{Kind: content.KindFlashcardFact}
	case quizPhrase.MatchString(text):
		return &Trigger{Kind: content.KindQuiz}
	}
	return nil
}

func triggerForAction(action string) *Trigger {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case ActionStartQuiz:
		return &Trigger{Kind: content.KindQuiz}
	case ActionFlashcards:
		return &Trigger{Kind: content.KindFlashcardFact}
	}
	return nil
}

// Chat owns the conversation state. It is safe for concurrent use, though
// the TUI drives it from a single goroutine.
type Chat struct {
	backend Backend
	kv      store.KV
	log     *logger.Logger
	now     func() time.Time

	mu       sync.Mutex
	topic    topics.Context
	history  []Message
	socratic bool
}

// Option configures a Chat.
type Option func(*Chat)

// WithLogger sets the logger.
func WithLogger(log *logger.Logger) Option {
	return func(c *Chat) { c.log = log }
}

// WithNow replaces the clock.
func WithNow(now func() time.Time) Option {
	return func(c *Chat) { c.now = now }
}

// New creates a Chat and restores the saved transcript from kv. backend may
// be nil when no LLM is configured; Send then only runs inference.
func New(ctx context.Context, backend Backend, kv store.KV, opts ...Option) *Chat {
	c := &Chat{backend: backend, kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}

	var saved []Message
	switch err := store.GetJSON(ctx, kv, HistoryKey, &saved); {
	case err == nil:
		c.history = trim(saved)
	case errors.Is(err, store.ErrNotFound):
	default:
		c.log.Warn("failed to load chat history", "error", err)
	}
	return c
}

// Send posts a user message and returns the tutor's turn. A transport
// failure is reported through Turn.Notice and the returned error; the user
// message stays in the transcript either way.
func (c *Chat) Send(ctx context.Context, text string) (Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Turn{Context: c.Context()}, nil
	}

	c.mu.Lock()
	now := c.now()
	delta := topics.Infer(text)
	c.topic.Apply(delta, now)
	if !delta.Empty() {
		c.log.Debug("context inferred", "subject", delta.Subject, "topic", delta.Topic, "rule", delta.Rule)
	}
	c.appendLocked(RoleUser, text, now)
	req := Request{
		History:  append([]Message(nil), c.history...),
		Subject:  c.topic.Subject,
		Socratic: c.socratic,
	}
	c.mu.Unlock()

	trigger := DetectTrigger(text)

	if c.backend == nil {
		c.persist(ctx)
		return Turn{Context: c.Context(), Trigger: trigger}, nil
	}

	reply, err := c.backend.Reply(ctx, req)
	if err != nil {
		c.log.Warn("tutor reply failed", "error", err)
		c.persist(ctx)
		return Turn{
			Context: c.Context(),
			Trigger: trigger,
			Notice:  "The tutor is unreachable right now. Please try again.",
		}, err
	}

	c.mu.Lock()
	c.topic.Update(reply.ActionSubject, reply.ActionTopic, c.now())
	c.appendLocked(RoleAssistant, reply.ResponseText, c.now())
	c.mu.Unlock()
	c.persist(ctx)

	if t := triggerForAction(reply.Action); t != nil {
		trigger = t
	}
	return Turn{Reply: reply, Context: c.Context(), Trigger: trigger}, nil
}

func (c *Chat) appendLocked(role Role, text string, at time.Time) {
	c.history = trim(append(c.history, Message{
		ID:   uuid.NewString(),
		Role: role,
		Text: text,
		At:   at,
	}))
}

func trim(h []Message) []Message {
	if len(h) > MaxHistory {
		h = append([]Message(nil), h[len(h)-MaxHistory:]...)
	}
	return h
}

func (c *Chat) persist(ctx context.Context) {
	c.mu.Lock()
	snapshot := append([]Message(nil), c.history...)
	c.mu.Unlock()
	if err := store.SetJSON(ctx, c.kv, HistoryKey, snapshot); err != nil {
		c.log.Warn("failed to save chat history", "error", err)
	}
}

// Context returns the current subject and topic.
func (c *Chat) Context() topics.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.topic
}

// SetContext declares the subject and topic explicitly, as a user picking
// them from a menu would.
func (c *Chat) SetContext(subject, topic string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topic.Update(subject, topic, c.now())
}

// History returns a copy of the transcript.
func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.history...)
}

// Socratic reports whether socratic mode is on.
func (c *Chat) Socratic() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.socratic
}

// SetSocratic turns socratic mode on or off.
func (c *Chat) SetSocratic(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.socratic = on
}

// Reset clears the transcript and the inferred context.
func (c *Chat) Reset(ctx context.Context) {
	c.mu.Lock()
	c.history = nil
	c.topic.Reset()
	c.mu.Unlock()
	if err := c.kv.Delete(ctx, HistoryKey); err != nil {
		c.log.Warn("failed to clear chat history", "error", err)
	}
}
