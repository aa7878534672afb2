package corpus

import (
	"encoding/json"
	"math/rand/v2"
	"testing"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/topics"
)

func TestDefault_CoversCoreSubjects(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	nq, nf := c.Len()
	if nq == 0 || nf == 0 {
		t.Fatalf("empty bank: %d questions, %d facts", nq, nf)
	}

	have := make(map[string]bool)
	for _, s := range c.Subjects() {
		have[s] = true
	}
	for _, s := range topics.CoreSubjects {
		if !have[s] {
			t.Errorf("no curated content for %q", s)
		}
	}
}

func TestDefault_EveryRecordValid(t *testing.T) {
	var raw bank
	c, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if err := json.Unmarshal(bankJSON, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	nq, nf := c.Len()
	if nq != len(raw.Questions) {
		t.Errorf("%d of %d questions failed validation", len(raw.Questions)-nq, len(raw.Questions))
	}
	if nf != len(raw.Facts) {
		t.Errorf("%d of %d facts failed validation", len(raw.Facts)-nf, len(raw.Facts))
	}
}

func testCorpus() *Corpus {
	q := func(subject, topic, text string) content.Question {
		return content.Question{Subject: subject, Topic: topic, Question: text, Options: []string{"a", "b"}, CorrectIndex: 0}
	}
	return New([]content.Question{
		q("Physics", "energy", "What is energy?"),
		q("Physics", "energy", "Unit of energy?"),
		q("Physics", "optics", "What is refraction?"),
		q("Chemistry", "acids and bases", "What is pH?"),
		q("Physics", "energy", ""), // invalid, dropped
	}, []Fact{
		{Subject: "Physics", Topic: "energy", Front: "Joule", Back: "SI unit of energy"},
		{Subject: "Physics", Topic: "energy", Front: "", Back: "dropped"},
	})
}

func TestNew_DropsInvalid(t *testing.T) {
	nq, nf := testCorpus().Len()
	if nq != 4 || nf != 1 {
		t.Errorf("Len() = %d, %d; want 4, 1", nq, nf)
	}
}

func TestLookup(t *testing.T) {
	c := testCorpus()
	tests := []struct {
		name        string
		q           Query
		wantLen     int
		wantRelaxed bool
	}{
		{"subject and topic", Query{Kind: content.KindQuiz, Subject: "Physics", Topic: "energy"}, 2, false},
		{"case insensitive", Query{Kind: content.KindQuiz, Subject: "physics", Topic: "ENERGY"}, 2, false},
		{"query contains topic", Query{Kind: content.KindQuiz, Subject: "Physics", Topic: "kinetic energy"}, 2, false},
		{"topic contains query", Query{Kind: content.KindQuiz, Subject: "Chem", Topic: "acids"}, 1, false},
		{"relax to subject", Query{Kind: content.KindQuiz, Subject: "Physics", Topic: "thermodynamics", Minimum: 1}, 3, true},
		{"no relax without minimum", Query{Kind: content.KindQuiz, Subject: "Physics", Topic: "thermodynamics"}, 0, false},
		{"no relax without subject", Query{Kind: content.KindQuiz, Topic: "thermodynamics", Minimum: 1}, 0, false},
		{"no subject", Query{Kind: content.KindQuiz}, 4, false},
		{"fact cards", Query{Kind: content.KindFlashcardFact, Subject: "Physics", Topic: "energy"}, 1, false},
		{"quiz-derived cards", Query{Kind: content.KindFlashcardQuiz, Subject: "Physics"}, 3, false},
		{"unknown subject", Query{Kind: content.KindQuiz, Subject: "Economics", Minimum: 3}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, relaxed := c.Lookup(tt.q)
			if set.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", set.Len(), tt.wantLen)
			}
			if relaxed != tt.wantRelaxed {
				t.Errorf("relaxed = %v, want %v", relaxed, tt.wantRelaxed)
			}
			if set.Kind != tt.q.Kind {
				t.Errorf("Kind = %q, want %q", set.Kind, tt.q.Kind)
			}
		})
	}
}

func TestSample(t *testing.T) {
	c := testCorpus()
	set, _ := c.Lookup(Query{Kind: content.KindQuiz})

	got := Sample(set, 2, rand.New(rand.NewPCG(1, 2)))
	if got.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", got.Len())
	}
	for i, q := range got.Questions {
		if q.ID != i+1 {
			t.Errorf("Questions[%d].ID = %d, want %d", i, q.ID, i+1)
		}
	}

	again := Sample(set, 2, rand.New(rand.NewPCG(1, 2)))
	for i := range got.Questions {
		if got.Questions[i].Question != again.Questions[i].Question {
			t.Errorf("same seed gave different samples at %d", i)
		}
	}

	if all := Sample(set, 10, rand.New(rand.NewPCG(1, 2))); all.Len() != set.Len() {
		t.Errorf("oversized sample Len() = %d, want %d", all.Len(), set.Len())
	}
	if set.Questions[0].ID != 0 {
		t.Error("Sample modified its input")
	}
}
