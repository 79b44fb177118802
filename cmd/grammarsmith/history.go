package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tbeckett/grammarsmith/internal/state"
)

var (
	historyLimit int
	historyTasks bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent generation runs",
	Long: `History lists the most recent generation runs recorded in the
project ledger (.grammarsmith/history.db), newest first.

With --tasks, each run is expanded into its per-task outcomes.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
	historyCmd.Flags().BoolVar(&historyTasks, "tasks", false, "Show per-task outcomes for each run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	db, err := state.OpenProject(".")
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate history: %w", err)
	}

	runs, err := db.RecentRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	for _, run := range runs {
		status := color.GreenString("ok")
		if run.TasksFailed > 0 {
			status = color.RedString(fmt.Sprintf("%d failed", run.TasksFailed))
		}
		fmt.Printf("%s  %s  %s  pool=%d waves=%d tasks=%d %s (%s)\n",
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.ID[:8],
			run.LanguageID,
			run.PoolSize,
			run.Waves,
			run.TasksTotal,
			status,
			run.Duration.Round(time.Millisecond))

		if historyTasks {
			tasks, err := db.RunTasks(run.ID)
			if err != nil {
				return err
			}
			for _, rec := range tasks {
				if rec.OK {
					fmt.Printf("    %s %s (%s)\n", color.GreenString("✓"), rec.TaskID, rec.Duration.Round(time.Millisecond))
				} else {
					fmt.Printf("    %s %s: %s\n", color.RedString("✗"), rec.TaskID, rec.Error)
				}
			}
		}
	}

	return nil
}
