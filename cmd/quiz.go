package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/session"
	"github.com/abhisek/edchat/internal/study"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz on the command line",
	Long: `Fetch a quiz for a subject and topic and answer it line by line.

Answers are a letter (A-F) or a number (1-6); an empty line skips the
question. The result counts toward your stats like a quiz in the app.`,
	RunE: runQuiz,
}

func init() {
	quizCmd.Flags().String("subject", "", "Subject, e.g. Physics")
	quizCmd.Flags().String("topic", "", "Topic within the subject")
	quizCmd.Flags().Int("count", 0, "Number of questions (default from settings)")
	quizCmd.Flags().String("difficulty", "", "easy, medium or hard (default from settings)")
}

func runQuiz(cmd *cobra.Command, args []string) error {
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	count, _ := cmd.Flags().GetInt("count")
	diffVal, _ := cmd.Flags().GetString("difficulty")

	ctx := cmd.Context()
	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	svc, err := d.services(ctx)
	if err != nil {
		return fmt.Errorf("build services: %w", err)
	}
	d.ledger.UpdateStreak(ctx, time.Now())

	done := make(chan session.Summary, 1)
	engine := svc.NewEngine(done)

	req := svc.Request(content.KindQuiz, subject, topic, engine.Generation())
	if count > 0 {
		req.Count = count
		req.Minimum = min(req.Minimum, count)
	}
	if diffVal != "" {
		diff, err := content.ParseDifficulty(diffVal)
		if err != nil {
			return err
		}
		req.Difficulty = diff
	}

	fmt.Printf("Fetching %d questions...\n", req.Count)
	res := svc.Pipeline.Extract(ctx, req)
	if res.Notice != "" {
		fmt.Println(res.Notice)
	}
	fmt.Println()

	info := session.Info{Subject: subject, Topic: topic, Kind: content.KindQuiz}
	if _, err := engine.Start(info, res.Set.Questions, false, 0); err != nil {
		return fmt.Errorf("start quiz: %w", err)
	}

	questions := engine.State().Questions
	if err := askAll(engine, questions, os.Stdin, os.Stdout); err != nil {
		return err
	}

	if _, err := engine.Submit(); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	c := svc.Record(context.WithoutCancel(ctx), <-done)
	printCompletion(os.Stdout, c)
	return nil
}

// askAll prompts for each question on out and records the answers read
// from in. It stops early when in is closed.
func askAll(engine *session.Engine, questions []content.Question, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for i, q := range questions {
		fmt.Fprintf(out, "── Question %d/%d ──\n", i+1, len(questions))
		fmt.Fprintln(out, q.Question)
		for j, opt := range q.Options {
			fmt.Fprintf(out, "  %s) %s\n", session.Letter(j), opt)
		}

		for {
			fmt.Fprint(out, "\nYour answer: ")
			if !scanner.Scan() {
				fmt.Fprintln(out, "\n(input closed)")
				return scanner.Err()
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				fmt.Fprintln(out, "(skipped)")
				break
			}
			idx, ok := parseChoice(text, len(q.Options))
			if !ok {
				fmt.Fprintf(out, "Enter A-%s or 1-%d.\n", session.Letter(len(q.Options)-1), len(q.Options))
				continue
			}
			if err := engine.Answer(q.ID, idx); err != nil {
				return err
			}
			break
		}
		fmt.Fprintln(out)
	}
	return nil
}

// parseChoice accepts a letter (a, B) or a 1-based number.
func parseChoice(s string, n int) (int, bool) {
	if len(s) == 1 {
		c := s[0] | 0x20
		if c >= 'a' && c <= 'z' {
			idx := int(c - 'a')
			return idx, idx < n
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > n {
		return 0, false
	}
	return v - 1, true
}

func printCompletion(out io.Writer, c study.Completion) {
	byID := make(map[int]content.Question, len(c.Summary.State.Questions))
	for _, q := range c.Summary.State.Questions {
		byID[q.ID] = q
	}
	for _, o := range c.Summary.Outcomes {
		q := byID[o.QuestionID]
		mark := "\033[32m✓\033[0m"
		if !o.Correct {
			mark = "\033[31m✗\033[0m"
		}
		fmt.Fprintf(out, "%s %s (answer %s)\n", mark, q.Question, session.Letter(q.CorrectIndex))
		if q.Explanation != "" {
			fmt.Fprintf(out, "   %s\n", q.Explanation)
		}
	}
	score := c.Summary.Score
	fmt.Fprintf(out, "\n── Summary: %d/%d correct (%d%%) ──\n", score.Correct, score.Total, score.Percentage)
	for _, a := range c.Unlocked {
		fmt.Fprintf(out, "%s Achievement unlocked: %s\n", a.Icon, a.Name)
	}
}
