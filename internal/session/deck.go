package session

import "github.com/abhisek/edchat/internal/content"

// Deck steps through flashcards. Flashcard study is not scored; the deck
// only tracks position, which side is showing and which cards the learner
// marked as known.
type Deck struct {
	Cards   []content.Flashcard
	Index   int
	Flipped bool
	Known   map[int]bool
}

// NewDeck creates a deck positioned on the first card.
func NewDeck(cards []content.Flashcard) *Deck {
	return &Deck{Cards: cards, Known: make(map[int]bool)}
}

// Current returns the card on top, or false for an empty deck.
func (d *Deck) Current() (content.Flashcard, bool) {
	if len(d.Cards) == 0 {
		return content.Flashcard{}, false
	}
	return d.Cards[d.Index], true
}

// Flip turns the current card over.
func (d *Deck) Flip() {
	d.Flipped = !d.Flipped
}

// Next moves forward, wrapping around. The new card shows its front.
func (d *Deck) Next() {
	if len(d.Cards) == 0 {
		return
	}
	d.Index = (d.Index + 1) % len(d.Cards)
	d.Flipped = false
}

// Prev moves back, wrapping around.
func (d *Deck) Prev() {
	if len(d.Cards) == 0 {
		return
	}
	d.Index = (d.Index - 1 + len(d.Cards)) % len(d.Cards)
	d.Flipped = false
}

// MarkKnown toggles the current card's known flag.
func (d *Deck) MarkKnown() {
	c, ok := d.Current()
	if !ok {
		return
	}
	d.Known[c.ID] = !d.Known[c.ID]
	if !d.Known[c.ID] {
		delete(d.Known, c.ID)
	}
}

// Progress returns how many cards are marked known out of the total.
func (d *Deck) Progress() (known, total int) {
	return len(d.Known), len(d.Cards)
}
