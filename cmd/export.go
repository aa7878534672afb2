package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/edchat/internal/store"
	"github.com/abhisek/edchat/internal/study"
)

var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export a completed session as plain text",
	Long: `Write the questions, options, correct answers and explanations of a
completed session to a text file. Without an ID the latest session is
exported.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("out", "o", ".", "Directory to write the export to")
	exportCmd.Flags().Bool("stdout", false, "Print to stdout instead of writing a file")
}

func runExport(cmd *cobra.Command, args []string) error {
	outDir, _ := cmd.Flags().GetString("out")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	d, err := openDeps(cmd)
	if err != nil {
		return err
	}
	defer d.Close()

	ctx := context.Background()
	repo := d.store.SessionRepo()

	var rec *store.SessionRecord
	if len(args) == 1 {
		rec, err = repo.Get(ctx, args[0])
	} else {
		rec, err = repo.Latest(ctx)
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if rec == nil {
		if len(args) == 1 {
			return fmt.Errorf("session %s not found", args[0])
		}
		fmt.Println("No sessions recorded yet.")
		return nil
	}

	if toStdout {
		fmt.Fprint(cmd.OutOrStdout(), rec.Export)
		return nil
	}

	svc := &study.Services{ExportDir: outDir, Log: d.log}
	path, err := svc.WriteExport("", rec.ID, rec.Export)
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}
