package stats

import "github.com/abhisek/edchat/internal/session"

// Rarity ranks how hard an achievement is to earn.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityEpic      Rarity = "epic"
	RarityLegendary Rarity = "legendary"
)

// DisplayName returns a human-readable label for the rarity.
func (r Rarity) DisplayName() string {
	switch r {
	case RarityCommon:
		return "Common"
	case RarityRare:
		return "Rare"
	case RarityEpic:
		return "Epic"
	case RarityLegendary:
		return "Legendary"
	default:
		return string(r)
	}
}

// Achievement is one entry of the unlock table.
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Rarity      Rarity

	// rule reports whether the achievement is earned, given stats that
	// already include the session just completed.
	rule func(s *Stats, score session.Score) bool
}

// Accuracy master needs this many attempts at this accuracy.
const (
	AccuracyMasterMinAttempted = 50
	AccuracyMasterThreshold    = 0.9
)

func quizCount(n int) func(*Stats, session.Score) bool {
	return func(s *Stats, _ session.Score) bool { return s.TotalQuizzes >= n }
}

func streak(n int) func(*Stats, session.Score) bool {
	return func(s *Stats, _ session.Score) bool { return s.StudyStreakDays >= n }
}

// Achievements is the unlock table, in display order.
var Achievements = []Achievement{
	{ID: "first-quiz", Name: "First Steps", Description: "Complete your first quiz", Icon: "🎯", Rarity: RarityCommon, rule: quizCount(1)},
	{ID: "perfect-score", Name: "Flawless", Description: "Answer every question in a quiz correctly", Icon: "⭐", Rarity: RarityRare,
		rule: func(_ *Stats, score session.Score) bool { return score.Perfect() }},
	{ID: "quiz-5", Name: "Warming Up", Description: "Complete 5 quizzes", Icon: "📘", Rarity: RarityCommon, rule: quizCount(5)},
	{ID: "quiz-10", Name: "Regular", Description: "Complete 10 quizzes", Icon: "📚", Rarity: RarityRare, rule: quizCount(10)},
	{ID: "quiz-25", Name: "Dedicated", Description: "Complete 25 quizzes", Icon: "🏅", Rarity: RarityEpic, rule: quizCount(25)},
	{ID: "quiz-50", Name: "Scholar", Description: "Complete 50 quizzes", Icon: "🏆", Rarity: RarityLegendary, rule: quizCount(50)},
	{ID: "streak-3", Name: "On a Roll", Description: "Study 3 days in a row", Icon: "🔥", Rarity: RarityCommon, rule: streak(3)},
	{ID: "streak-7", Name: "Week Strong", Description: "Study 7 days in a row", Icon: "⚡", Rarity: RarityRare, rule: streak(7)},
	{ID: "streak-30", Name: "Unstoppable", Description: "Study 30 days in a row", Icon: "🌟", Rarity: RarityLegendary, rule: streak(30)},
	{ID: "accuracy-master", Name: "Sharpshooter", Description: "Keep 90% accuracy over at least 50 questions", Icon: "💎", Rarity: RarityEpic,
		rule: func(s *Stats, _ session.Score) bool {
			return s.TotalAttempted >= AccuracyMasterMinAttempted && s.Accuracy() >= AccuracyMasterThreshold
		}},
}

// Lookup finds an achievement by ID.
func Lookup(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
