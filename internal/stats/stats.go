// Package stats keeps cumulative study statistics, the daily streak and
// achievement unlocks, persisted in the key-value store.
package stats

import "time"

// DateLayout is the format of LastVisitDate.
const DateLayout = "2006-01-02"

// GeneralSubject is the bucket for sessions without a subject.
const GeneralSubject = "General"

// SubjectStat is the per-subject tally.
type SubjectStat struct {
	Correct   int `json:"correct"`
	Attempted int `json:"attempted"`
}

// Stats is the cumulative record across sessions.
type Stats struct {
	TotalCorrect   int                    `json:"total_correct"`
	TotalAttempted int                    `json:"total_attempted"`
	SubjectStats   map[string]SubjectStat `json:"subject_stats"`
	TotalQuizzes   int                    `json:"total_quizzes"`

	// Achievements maps unlocked achievement IDs to their unlock time.
	Achievements map[string]time.Time `json:"achievements"`

	StudyStreakDays int    `json:"study_streak_days"`
	LastVisitDate   string `json:"last_visit_date"`
}

// Default returns empty stats.
func Default() Stats {
	return Stats{
		SubjectStats: make(map[string]SubjectStat),
		Achievements: make(map[string]time.Time),
	}
}

// Accuracy returns TotalCorrect / TotalAttempted, or 0.
func (s *Stats) Accuracy() float64 {
	if s.TotalAttempted == 0 {
		return 0
	}
	return float64(s.TotalCorrect) / float64(s.TotalAttempted)
}

// Has reports whether achievement id is unlocked.
func (s *Stats) Has(id string) bool {
	_, ok := s.Achievements[id]
	return ok
}

// clone returns a deep copy.
func (s Stats) clone() Stats {
	out := s
	out.SubjectStats = make(map[string]SubjectStat, len(s.SubjectStats))
	for k, v := range s.SubjectStats {
		out.SubjectStats[k] = v
	}
	out.Achievements = make(map[string]time.Time, len(s.Achievements))
	for k, v := range s.Achievements {
		out.Achievements[k] = v
	}
	return out
}

// StreakChange is the outcome of a daily visit check.
type StreakChange int

const (
	StreakUnchanged StreakChange = iota // Already visited today
	StreakExtended                      // Visited yesterday
	StreakReset                         // First visit, or a gap of more than a day
)

// NextStreak computes the streak after a visit on today, given the last
// visit date (DateLayout, or empty) and the current streak.
func NextStreak(lastVisit string, streak int, today time.Time) (int, StreakChange) {
	todayStr := today.Format(DateLayout)
	if lastVisit == todayStr {
		return streak, StreakUnchanged
	}
	yesterday := time.Date(today.Year(), today.Month(), today.Day()-1, 0, 0, 0, 0, today.Location())
	if lastVisit == yesterday.Format(DateLayout) {
		return streak + 1, StreakExtended
	}
	return 1, StreakReset
}
