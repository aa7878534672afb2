// Package corpus is the curated question bank shipped with the binary.
package corpus

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"

	"github.com/abhisek/edchat/internal/content"
)

//go:embed bank.json
var bankJSON []byte

// Fact is a curated fact card.
type Fact struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
	Front   string `json:"front"`
	Back    string `json:"back"`
}

func (f Fact) card() content.Flashcard {
	return content.Flashcard{Front: f.Front, Back: f.Back, Kind: content.CardFact}
}

type bank struct {
	Questions []content.Question `json:"questions"`
	Facts     []Fact             `json:"facts"`
}

// Corpus holds validated curated records. It is read-only after
// construction and safe for concurrent use.
type Corpus struct {
	questions []content.Question
	facts     []Fact
}

var (
	defaultOnce   sync.Once
	defaultCorpus *Corpus
	defaultErr    error
)

// Default returns the embedded bank, parsed and validated once.
func Default() (*Corpus, error) {
	defaultOnce.Do(func() {
		defaultCorpus, defaultErr = Parse(bankJSON)
	})
	return defaultCorpus, defaultErr
}

// MustDefault is Default for callers that treat a broken embedded bank as
// a programming error.
func MustDefault() *Corpus {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Parse builds a corpus from a JSON bank. Records failing validation are
// dropped.
func Parse(data []byte) (*Corpus, error) {
	var b bank
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse corpus: %w", err)
	}
	return New(b.Questions, b.Facts), nil
}

// New builds a corpus from in-memory records, dropping invalid ones.
func New(questions []content.Question, facts []Fact) *Corpus {
	chain := content.DefaultChain()
	c := &Corpus{}
	valid, _ := chain.FilterQuestions(questions)
	c.questions = valid
	for _, f := range facts {
		card := f.card()
		if chain.ValidateFlashcard(&card) == nil {
			c.facts = append(c.facts, f)
		}
	}
	return c
}

// Len returns the number of questions and facts.
func (c *Corpus) Len() (questions, facts int) {
	return len(c.questions), len(c.facts)
}

// Subjects returns the distinct subjects in the bank, sorted.
func (c *Corpus) Subjects() []string {
	seen := make(map[string]bool)
	for _, q := range c.questions {
		seen[q.Subject] = true
	}
	for _, f := range c.facts {
		seen[f.Subject] = true
	}
	out := make([]string, 0, len(seen))
	for s := range seen {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// matches is a case-insensitive substring match in either direction. An
// empty want matches everything.
func matches(have, want string) bool {
	want = strings.ToLower(strings.TrimSpace(want))
	if want == "" {
		return true
	}
	have = strings.ToLower(have)
	return strings.Contains(have, want) || strings.Contains(want, have)
}

// Query selects curated records.
type Query struct {
	Kind    content.Kind
	Subject string
	Topic   string
	// Minimum is the number of matches below which the topic filter is
	// dropped and the subject alone is matched.
	Minimum int
}

// Lookup returns every record matching q, as a set of q.Kind. Relaxed
// reports whether the topic filter was dropped. The topic is only dropped
// when a subject remains to filter on.
func (c *Corpus) Lookup(q Query) (set content.Set, relaxed bool) {
	set = c.Collect(q.Kind, q.Subject, q.Topic)
	if set.Len() < q.Minimum && strings.TrimSpace(q.Topic) != "" && strings.TrimSpace(q.Subject) != "" {
		return c.Collect(q.Kind, q.Subject, ""), true
	}
	return set, false
}

// Collect returns every record of kind matching subject and topic. Empty
// filters match everything.
func (c *Corpus) Collect(kind content.Kind, subject, topic string) content.Set {
	set := content.Set{Kind: kind}
	switch kind {
	case content.KindFlashcardFact:
		for _, f := range c.facts {
			if matches(f.Subject, subject) && matches(f.Topic, topic) {
				set.Flashcards = append(set.Flashcards, f.card())
			}
		}
	case content.KindFlashcardQuiz:
		for _, q := range c.questions {
			if matches(q.Subject, subject) && matches(q.Topic, topic) {
				set.Flashcards = append(set.Flashcards, q.ToFlashcard())
			}
		}
	default:
		for _, q := range c.questions {
			if matches(q.Subject, subject) && matches(q.Topic, topic) {
				set.Questions = append(set.Questions, q)
			}
		}
	}
	return set
}

// Sample returns up to n records of set in random order, renumbered. The
// input is not modified.
func Sample(set content.Set, n int, rng *rand.Rand) content.Set {
	out := content.Set{Kind: set.Kind}
	if set.Kind.IsFlashcard() {
		out.Flashcards = pick(set.Flashcards, n, rng)
	} else {
		out.Questions = pick(set.Questions, n, rng)
	}
	out.Renumber()
	return out
}

func pick[T any](in []T, n int, rng *rand.Rand) []T {
	out := append([]T(nil), in...)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
