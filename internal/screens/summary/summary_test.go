package summary

import (
	"os"
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/router"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/stats"
	"github.com/abhisek/edchat/internal/study"
)

func testCompletion() study.Completion {
	qs := []content.Question{
		{ID: 1, Question: "What is the SI unit of force?", Options: []string{"Joule", "Newton"}, CorrectIndex: 1},
		{ID: 2, Question: "What is 3 × 4?", Options: []string{"12", "7"}, CorrectIndex: 0},
	}
	first, _ := stats.Lookup("first-quiz")
	return study.Completion{
		Summary: session.Summary{
			State: session.State{
				ID:        "3b241101-e2bb-4255-8caf-4136c566a962",
				Info:      session.Info{Subject: "Physics", Kind: content.KindQuiz},
				Questions: qs,
				Answers:   map[int]int{1: 1},
			},
			Score:    session.Score{Correct: 1, Total: 2, Percentage: 50},
			Outcomes: []session.Outcome{{QuestionID: 1, Chosen: 1, Correct: true}, {QuestionID: 2, Chosen: -1}},
			Elapsed:  95 * time.Second,
		},
		Unlocked: []stats.Achievement{first},
		Export:   "Quiz: Physics\n",
	}
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New(&study.Services{}, testCompletion())
	if s.Title() != "Quiz Results" {
		t.Errorf("Title = %q, want %q", s.Title(), "Quiz Results")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New(&study.Services{}, testCompletion())
	view := s.View(100, 30)
	for _, want := range []string{"Score: 50%", "1:35", "First Steps", "skipped"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_Navigation(t *testing.T) {
	for _, key := range []rune{tea.KeyEnter, tea.KeyEscape} {
		s := New(&study.Services{}, testCompletion())
		_, cmd := s.Update(tea.KeyPressMsg{Code: key})
		if cmd == nil {
			t.Fatalf("expected a command for key %v", key)
		}
		if _, ok := cmd().(router.PopScreenMsg); !ok {
			t.Errorf("expected pop for key %v", key)
		}
	}
}

func TestSummaryScreen_Export(t *testing.T) {
	dir := t.TempDir()
	s := New(&study.Services{ExportDir: dir}, testCompletion())

	_, cmd := s.Update(tea.KeyPressMsg{Code: 'e', Text: "e"})
	if cmd == nil {
		t.Fatal("expected export command")
	}
	s.Update(cmd())

	if s.exportPath == "" {
		t.Fatalf("export failed: %s", s.exportErr)
	}
	data, err := os.ReadFile(s.exportPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Quiz: Physics\n" {
		t.Errorf("export = %q", data)
	}
	if !strings.Contains(s.View(120, 30), "Exported to") {
		t.Error("expected export confirmation in view")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New(&study.Services{}, testCompletion())
	if len(s.KeyHints()) != 3 {
		t.Errorf("KeyHints length = %d, want 3", len(s.KeyHints()))
	}
}
