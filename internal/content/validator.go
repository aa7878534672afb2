package content

import "fmt"

// Validator checks a single record. Implementations should be stateless and
// safe for concurrent use.
type Validator interface {
	// Name returns a short identifier for error messages and logging.
	Name() string

	// ValidateQuestion returns nil if q passes.
	ValidateQuestion(q *Question) *ValidationError

	// ValidateFlashcard returns nil if c passes.
	ValidateFlashcard(c *Flashcard) *ValidationError
}

// ValidationError describes why a record was rejected.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Message   string // Human-readable description of the failure
	Index     int    // Position of the record in its batch
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: record %d: %s", e.Validator, e.Index, e.Message)
}

// Chain runs validators in order; the first failure rejects the record.
type Chain []Validator

// DefaultChain is the standard validator chain.
func DefaultChain() Chain {
	return Chain{
		&StructuralValidator{},
		&OptionsValidator{},
	}
}

// ValidateQuestion runs every validator against q.
func (c Chain) ValidateQuestion(q *Question) *ValidationError {
	for _, v := range c {
		if err := v.ValidateQuestion(q); err != nil {
			return err
		}
	}
	return nil
}

// ValidateFlashcard runs every validator against card.
func (c Chain) ValidateFlashcard(card *Flashcard) *ValidationError {
	for _, v := range c {
		if err := v.ValidateFlashcard(card); err != nil {
			return err
		}
	}
	return nil
}

// FilterQuestions splits a batch into valid questions and per-record
// rejections. A bad record never affects its siblings. Questions repeating
// an earlier question's text are rejected as duplicates.
func (c Chain) FilterQuestions(batch []Question) ([]Question, []*ValidationError) {
	var (
		valid    []Question
		rejected []*ValidationError
		seen     = make(map[string]bool)
	)
	for i := range batch {
		q := batch[i]
		if err := c.ValidateQuestion(&q); err != nil {
			err.Index = i
			rejected = append(rejected, err)
			continue
		}
		key := dedupKey(q.Question)
		if seen[key] {
			rejected = append(rejected, &ValidationError{Validator: "dedup", Message: "duplicate question", Index: i})
			continue
		}
		seen[key] = true
		valid = append(valid, q)
	}
	return valid, rejected
}

// FilterFlashcards is FilterQuestions for flashcards, deduplicating on the
// front text.
func (c Chain) FilterFlashcards(batch []Flashcard) ([]Flashcard, []*ValidationError) {
	var (
		valid    []Flashcard
		rejected []*ValidationError
		seen     = make(map[string]bool)
	)
	for i := range batch {
		card := batch[i]
		if err := c.ValidateFlashcard(&card); err != nil {
			err.Index = i
			rejected = append(rejected, err)
			continue
		}
		key := dedupKey(card.Front + "\x00" + card.Back)
		if seen[key] {
			rejected = append(rejected, &ValidationError{Validator: "dedup", Message: "duplicate flashcard", Index: i})
			continue
		}
		seen[key] = true
		valid = append(valid, card)
	}
	return valid, rejected
}

// FilterQuestions validates batch with the default chain.
func FilterQuestions(batch []Question) ([]Question, []*ValidationError) {
	return DefaultChain().FilterQuestions(batch)
}

// FilterFlashcards validates batch with the default chain.
func FilterFlashcards(batch []Flashcard) ([]Flashcard, []*ValidationError) {
	return DefaultChain().FilterFlashcards(batch)
}
