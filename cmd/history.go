package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mostinn/bioprocessing-app/sim/history"
)

var (
	historyArchivePath string // SQLite archive written by run/compare --archive
	historyLimit       int    // Most recent runs to list
	historyRunID       string // Run id for history show
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse archived runs",
}

// --- bioproc history list ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived runs, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store, err := history.Open(historyArchivePath)
		if err != nil {
			logrus.Fatalf("Opening archive: %v", err)
		}
		defer store.Close()

		records, err := store.ListRuns(context.Background(), historyLimit)
		if err != nil {
			logrus.Fatalf("Listing runs: %v", err)
		}
		if len(records) == 0 {
			fmt.Println("Archive is empty.")
			return
		}
		fmt.Printf("%-36s  %-19s  %-30s  %-18s  %10s  %10s  %7s\n",
			"RUN", "CREATED", "SCENARIO", "MODE", "FINAL X", "FINAL P", "CRASHED")
		for _, rec := range records {
			fmt.Printf("%-36s  %-19s  %-30s  %-18s  %10.4f  %10.4f  %7t\n",
				rec.RunID,
				rec.CreatedAt.Format("2006-01-02 15:04:05"),
				rec.Scenario,
				rec.Mode,
				rec.FinalBiomass,
				rec.FinalProduct,
				rec.Crashed)
		}
	},
}

// --- bioproc history show ---

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print one archived run: parameters and metrics",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		store, err := history.Open(historyArchivePath)
		if err != nil {
			logrus.Fatalf("Opening archive: %v", err)
		}
		defer store.Close()

		rec, err := store.GetRun(context.Background(), historyRunID)
		if errors.Is(err, history.ErrNotFound) {
			logrus.Fatalf("No archived run %q; see `bioproc history list`", historyRunID)
		}
		if err != nil {
			logrus.Fatalf("Reading archive: %v", err)
		}

		fmt.Printf("Run %s (%s), created %s\n",
			rec.RunID, rec.Scenario, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("%d steps over %.1f h", rec.Steps, rec.Duration)
		if rec.Crashed {
			fmt.Printf("; CULTURE CRASH at t=%.2f h", rec.CrashTime)
		}
		if rec.Anomalies > 0 {
			fmt.Printf("; %d integration anomalies", rec.Anomalies)
		}
		fmt.Println()

		params, err := yaml.Marshal(rec.Params)
		if err != nil {
			logrus.Fatalf("YAML marshal failed: %v", err)
		}
		fmt.Println("--- Parameters ---")
		fmt.Print(string(params))
		rec.Metrics.Print(rec.Params.Product)
	},
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyArchivePath, "archive", "runs.db", "SQLite run archive")

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "Most recent runs to list")

	historyShowCmd.Flags().StringVar(&historyRunID, "run", "", "Run id to show")
	_ = historyShowCmd.MarkFlagRequired("run")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)

	rootCmd.AddCommand(historyCmd)
}
