package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get when the key has no value.
var ErrNotFound = errors.New("store: key not found")

// KV is a flat key-value namespace. Values are opaque bytes; callers
// usually go through GetJSON/SetJSON.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key written through this KV.
	Clear(ctx context.Context) error
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	Purpose string    // exact purpose match ("" = any)
	From    time.Time // timestamp >= From
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates token usage for one purpose label.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates token usage for one model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo records and queries LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns a single event, or nil if it does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error)

	LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error)
	LLMUsageByModel(ctx context.Context) ([]ModelUsage, error)
}

// SessionRecord is a completed quiz or flashcard session.
type SessionRecord struct {
	ID          string
	Kind        string
	Subject     string
	Topic       string
	Correct     int
	Total       int
	Percentage  int
	Export      string
	CompletedAt time.Time
}

// SessionRepo stores completed sessions.
type SessionRepo interface {
	Save(ctx context.Context, rec *SessionRecord) error

	// Latest returns the most recent session, or nil if none exist.
	Latest(ctx context.Context) (*SessionRecord, error)

	// Get returns the session with the given ID, or nil.
	Get(ctx context.Context, id string) (*SessionRecord, error)

	// List returns up to limit sessions, newest first.
	List(ctx context.Context, limit int) ([]SessionRecord, error)

	// Prune deletes all but the N most recent sessions.
	Prune(ctx context.Context, keep int) error
}
