package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset learner data",
	Long: `Delete stats, achievements, preferences and chat history from the
key-value store. The LLM request log and session history are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Println("This deletes stats, achievements, preferences and chat history.")
			fmt.Println("Run again with --yes to confirm.")
			return nil
		}

		d, err := openDeps(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.kv.Clear(context.Background()); err != nil {
			return fmt.Errorf("clear store: %w", err)
		}
		d.log.Info("learner data reset", "backend", d.cfg.Store.Backend)
		fmt.Println("Learner data reset.")
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolP("yes", "y", false, "Confirm the reset")
}
