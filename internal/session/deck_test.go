package session

import (
	"testing"

	"github.com/abhisek/edchat/internal/content"
)

func TestDeck(t *testing.T) {
	d := NewDeck([]content.Flashcard{
		{ID: 1, Front: "a", Back: "A"},
		{ID: 2, Front: "b", Back: "B"},
	})

	d.Flip()
	if !d.Flipped {
		t.Fatal("Flip did not flip")
	}
	d.Next()
	if c, _ := d.Current(); c.ID != 2 || d.Flipped {
		t.Errorf("after Next: card %d flipped=%v", c.ID, d.Flipped)
	}
	d.Next()
	if c, _ := d.Current(); c.ID != 1 {
		t.Errorf("Next should wrap, got card %d", c.ID)
	}
	d.Prev()
	if c, _ := d.Current(); c.ID != 2 {
		t.Errorf("Prev should wrap, got card %d", c.ID)
	}

	d.MarkKnown()
	if known, total := d.Progress(); known != 1 || total != 2 {
		t.Errorf("Progress() = %d/%d", known, total)
	}
	d.MarkKnown()
	if known, _ := d.Progress(); known != 0 {
		t.Errorf("MarkKnown should toggle, known = %d", known)
	}
}

func TestDeck_Empty(t *testing.T) {
	d := NewDeck(nil)
	if _, ok := d.Current(); ok {
		t.Error("empty deck has a current card")
	}
	d.Next()
	d.Prev()
	d.MarkKnown()
}
