package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/edchat/internal/app"
)

// historyKeep is the number of sessions kept in the history table.
const historyKeep = 500

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the interactive tutor (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

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
	if err := svc.Sessions.Prune(ctx, historyKeep); err != nil {
		d.log.Warn("failed to prune session history", "error", err)
	}
	d.serveMetrics(ctx)

	return app.Run(svc)
}
