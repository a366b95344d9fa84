package cmd

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mostinn/bioprocessing-app/sim"
	"github.com/mostinn/bioprocessing-app/sim/export"
	"github.com/mostinn/bioprocessing-app/sim/scenario"
)

var (
	compareRefs        []string // Scenarios to run (preset names or YAML files)
	compareChartPath   string   // Overlay biomass chart PNG
	compareCSVPath     string   // Combined metrics CSV, one row per run
	compareArchivePath string   // SQLite archive to append every run to
)

// compareCmd runs several scenarios and reports them side by side
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run several scenarios side by side",
	Long: `Run two or more scenarios and print their metrics in aligned columns.
Runs are independent, so they execute in parallel; the comparison order
follows the order of the --scenario flags.`,
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		if len(compareRefs) < 2 {
			logrus.Fatalf("compare needs at least two --scenario flags, got %d", len(compareRefs))
		}
		scenarios := make([]*scenario.Scenario, len(compareRefs))
		for i, ref := range compareRefs {
			sc, err := resolveScenario(ref)
			if err != nil {
				logrus.Fatalf("Resolving scenario: %v", err)
			}
			scenarios[i] = sc
		}

		// Each goroutine writes only its own slot, so no locking is needed.
		results := make([]*sim.Result, len(scenarios))
		errs := make([]error, len(scenarios))
		var wg sync.WaitGroup
		for i, sc := range scenarios {
			wg.Add(1)
			go func(i int, sc *scenario.Scenario) {
				defer wg.Done()
				results[i], errs[i] = scenario.Run(sc)
			}(i, sc)
		}
		wg.Wait()
		for i, err := range errs {
			if err != nil {
				logrus.Fatalf("Scenario %q failed: %v", scenarios[i].Name, err)
			}
		}

		printComparison(results)

		if compareChartPath != "" {
			if err := export.RenderComparisonChart(compareChartPath, results); err != nil {
				logrus.Fatalf("Rendering comparison chart: %v", err)
			}
			logrus.Infof("Comparison chart written to %s", compareChartPath)
		}
		if compareCSVPath != "" {
			if err := export.WriteMetricsCSV(compareCSVPath, results...); err != nil {
				logrus.Fatalf("Writing metrics CSV: %v", err)
			}
			logrus.Infof("Metrics written to %s", compareCSVPath)
		}
		if compareArchivePath != "" {
			if err := archiveRuns(compareArchivePath, results...); err != nil {
				logrus.Fatalf("Archiving runs: %v", err)
			}
		}
	},
}

// columnName labels a comparison column with the scenario name when there is
// one, the mode otherwise.
func columnName(res *sim.Result) string {
	if res.Scenario != "" {
		return res.Scenario
	}
	return string(res.Params.Mode)
}

// printComparison renders one column per run with metric rows aligned.
func printComparison(results []*sim.Result) {
	type row struct {
		label string
		value func(*sim.Result) string
	}
	rows := []row{
		{"Mode", func(r *sim.Result) string { return string(r.Params.Mode) }},
		{"Duration (h)", func(r *sim.Result) string { return fmt.Sprintf("%.1f", r.Params.Duration) }},
		{"Final Biomass (g/L)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Series.Final().Biomass) }},
		{"Total Biomass (g)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.TotalBiomass) }},
		{"Total Product (g)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.TotalProduct) }},
		{"Biomass Productivity (g/h)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.BiomassProductivity) }},
		{"Product Productivity (g/h)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.ProductProductivity) }},
		{"Biomass Yield (g/g)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.BiomassYield) }},
		{"Product Yield (g/g)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.ProductYield) }},
		{"Substrate Conversion", func(r *sim.Result) string { return fmt.Sprintf("%.2f%%", r.Metrics.SubstrateConversion*100) }},
		{"Max Growth Rate (1/h)", func(r *sim.Result) string { return fmt.Sprintf("%.4f", r.Metrics.MaxGrowthRate) }},
		{"Crashed", func(r *sim.Result) string { return fmt.Sprintf("%t", r.Crash.Crashed) }},
	}

	width := 12
	for _, r := range results {
		if len(columnName(r)) > width {
			width = len(columnName(r))
		}
	}

	fmt.Println("=== Scenario Comparison ===")
	fmt.Printf("%-27s", "")
	for _, r := range results {
		fmt.Printf("  %*s", width, columnName(r))
	}
	fmt.Println()
	for _, row := range rows {
		fmt.Printf("%-27s", row.label)
		for _, r := range results {
			fmt.Printf("  %*s", width, row.value(r))
		}
		fmt.Println()
	}
}

func init() {
	compareCmd.Flags().StringSliceVar(&compareRefs, "scenario", nil, "Scenario to include (preset name or YAML file); repeat for each run")
	compareCmd.Flags().StringVar(&compareChartPath, "chart", "", "Render overlaid biomass traces to this PNG file")
	compareCmd.Flags().StringVar(&compareCSVPath, "metrics-csv", "", "Write one metrics row per run to this CSV file")
	compareCmd.Flags().StringVar(&compareArchivePath, "archive", "", "Append every run to this SQLite archive")

	rootCmd.AddCommand(compareCmd)
}
