package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/edchat/internal/content"
	"github.com/abhisek/edchat/internal/corpus"
	"github.com/abhisek/edchat/internal/pipeline"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file]",
	Short: "Recover quiz or flashcard records from raw model text",
	Long: `Run the structured-text recovery on a file (or stdin) and print the
valid records as JSON. Useful for checking how a model reply is parsed.
No database is opened.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("kind", string(content.KindQuiz), "quiz, flashcard-quiz or flashcard-fact")
	extractCmd.Flags().String("subject", "", "Subject used for fallback content")
	extractCmd.Flags().String("topic", "", "Topic used for fallback content")
	extractCmd.Flags().Int("min", pipeline.DefaultMinimum, "Minimum valid records before falling back")
}

func runExtract(cmd *cobra.Command, args []string) error {
	kindVal, _ := cmd.Flags().GetString("kind")
	subject, _ := cmd.Flags().GetString("subject")
	topic, _ := cmd.Flags().GetString("topic")
	minimum, _ := cmd.Flags().GetInt("min")

	kind, err := content.ParseKind(kindVal)
	if err != nil {
		return err
	}

	var raw []byte
	if len(args) == 1 {
		raw, err = os.ReadFile(args[0])
	} else {
		raw, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	bank, err := corpus.Default()
	if err != nil {
		return err
	}
	res := pipeline.New(bank, nil).ExtractText(string(raw), kind, subject, topic, minimum)

	fmt.Fprintf(cmd.ErrOrStderr(), "layer: %s  records: %d  rejected: %d\n", res.Layer, res.Set.Len(), res.Rejected)

	var out any = res.Set.Questions
	if kind.IsFlashcard() {
		out = res.Set.Flashcards
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
