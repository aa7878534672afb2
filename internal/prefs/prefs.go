// Package prefs stores the learner's quiz preferences.
package prefs

import (
	"context"
	"errors"

	"github.com/abhisek/edchat/internal/config"
	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/store"
)

// Key is the KV key preferences are stored under.
const Key = "prefs"

// Bounds for QuestionCount.
const (
	MinQuestions = 3
	MaxQuestions = 15
)

// Prefs are user-adjustable settings.
type Prefs struct {
	Timed         bool               `json:"timed"`
	Difficulty    content.Difficulty `json:"difficulty"`
	QuestionCount int                `json:"question_count"`
	Socratic      bool               `json:"socratic"`
}

// Defaults derives preferences from the quiz configuration.
func Defaults(q config.QuizConfig) Prefs {
	d, err := content.ParseDifficulty(q.Difficulty)
	if err != nil {
		d = content.DifficultyMedium
	}
	return Prefs{
		Timed:         q.Timed,
		Difficulty:    d,
		QuestionCount: q.QuestionCount,
	}.Normalize()
}

// Normalize clamps out-of-range values.
func (p Prefs) Normalize() Prefs {
	if _, err := content.ParseDifficulty(string(p.Difficulty)); err != nil || p.Difficulty == "" {
		p.Difficulty = content.DifficultyMedium
	}
	switch {
	case p.QuestionCount == 0:
		p.QuestionCount = 5
	case p.QuestionCount < MinQuestions:
		p.QuestionCount = MinQuestions
	case p.QuestionCount > MaxQuestions:
		p.QuestionCount = MaxQuestions
	}
	return p
}

// Load reads preferences, returning defaults when none are stored. A
// non-nil error means the stored value could not be read; the returned
// Prefs are still usable.
func Load(ctx context.Context, kv store.KV, defaults Prefs) (Prefs, error) {
	var p Prefs
	err := store.GetJSON(ctx, kv, Key, &p)
	switch {
	case err == nil:
		return p.Normalize(), nil
	case errors.Is(err, store.ErrNotFound):
		return defaults, nil
	default:
		return defaults, err
	}
}

// Save stores p.
func Save(ctx context.Context, kv store.KV, p Prefs) error {
	return store.SetJSON(ctx, kv, Key, p.Normalize())
}
