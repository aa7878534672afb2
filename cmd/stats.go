package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/edchat/internal/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		s := d.ledger.Stats()
		if s.TotalQuizzes == 0 {
			fmt.Println("No quizzes taken yet.")
			return nil
		}

		fmt.Printf("Quizzes:   %d\n", s.TotalQuizzes)
		fmt.Printf("Correct:   %d / %d (%.0f%%)\n", s.TotalCorrect, s.TotalAttempted, s.Accuracy()*100)
		fmt.Printf("Streak:    %d day(s), last visit %s\n", s.StudyStreakDays, s.LastVisitDate)

		subjects := make([]string, 0, len(s.SubjectStats))
		for name := range s.SubjectStats {
			subjects = append(subjects, name)
		}
		sort.Strings(subjects)

		fmt.Println()
		fmt.Println("By Subject")
		fmt.Println(strings.Repeat("─", 48))
		fmt.Printf("%-24s  %8s  %8s  %4s\n", "Subject", "Correct", "Tried", "%")
		for _, name := range subjects {
			st := s.SubjectStats[name]
			pct := 0
			if st.Attempted > 0 {
				pct = st.Correct * 100 / st.Attempted
			}
			fmt.Printf("%-24s  %8d  %8d  %3d%%\n", truncate(name, 24), st.Correct, st.Attempted, pct)
		}

		fmt.Println()
		fmt.Printf("Achievements (%d/%d)\n", len(s.Achievements), len(stats.Achievements))
		fmt.Println(strings.Repeat("─", 48))
		for _, a := range stats.Achievements {
			if at, ok := s.Achievements[a.ID]; ok {
				fmt.Printf("%s  %-14s %s\n", a.Icon, a.Name, at.Local().Format("2006-01-02"))
			} else {
				fmt.Printf("🔒  %-14s %s\n", a.Name, a.Description)
			}
		}
		return nil
	},
}
