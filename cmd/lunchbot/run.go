package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/lunchbot/internal/calendar"
	"github.com/dgallion1/lunchbot/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	runDryRun bool
	runDate   string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch, render and post one day's menu",
	Long: `Runs the pipeline once. With --dry-run the report is printed and
nothing is posted. --date selects a day other than today (YYYY-MM-DD).`,
	Args: cobra.NoArgs,
	RunE: runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "print the report without posting")
	runCmd.Flags().StringVar(&runDate, "date", "", "menu date as YYYY-MM-DD (default today)")
}

func runOnce(cmd *cobra.Command, args []string) error {
	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !runDryRun {
		if err := cfg.ValidatePosting(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	a, err := newApp(cfg, log, !runDryRun)
	if err != nil {
		return err
	}
	defer a.Close()

	day, err := calendar.ParseDate(runDate, a.runner.Location(), a.runner.Today)
	if err != nil {
		return fmt.Errorf("--date: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	run, err := a.runner.Run(ctx, day, runDryRun)
	snap := run.Snapshot()
	if err != nil {
		return fmt.Errorf("run %s failed: %w", snap.ID, err)
	}

	if snap.Status == pipeline.StatusSkipped {
		log.Info("no menu on weekends", "date", snap.Date)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), snap.Message)
	for _, e := range snap.Errors {
		log.Warn("run completed with error", "error", e)
	}
	return nil
}
