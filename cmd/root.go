package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "edchat",
	Short: "Chat with an AI tutor, then quiz yourself",
	Long: `edchat is a terminal study companion. Chat with an AI tutor about any
subject; edchat follows the topic and turns it into quizzes or flashcards
on request, and keeps your stats, streak and achievements.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides EDCHAT_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/edchat/config.yaml)")
	rootCmd.PersistentFlags().String("store", "", "Key-value backend: sqlite, redis or memory (overrides EDCHAT_STORE)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(quizCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
