// Package export writes completed runs to files other tools consume:
// time-series and metrics CSVs, and PNG charts of concentration traces.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mostinn/bioprocessing-app/sim"
)

// metricsColumns is the header of the per-run metrics table. One row per run;
// compare appends several rows to a single file.
var metricsColumns = []string{
	"run_id", "scenario", "mode", "product", "duration_h", "steps",
	"biomass_productivity_g_h", "product_productivity_g_h",
	"total_biomass_g", "total_product_g",
	"biomass_yield_g_g", "product_yield_g_g",
	"substrate_supplied_g", "substrate_consumed_g", "substrate_conversion",
	"max_growth_rate_1_h", "crashed", "crash_time_h", "anomalies",
}

// seriesColumns returns the time-series header. The product column is labeled
// with the run's product name so exported tables read naturally.
func seriesColumns(product string) []string {
	return []string{
		"time_h", "substrate_g_l", "biomass_g_l", "volume_l",
		productColumn(product), "growth_rate_1_h",
		"fed_substrate_g", "harvested_biomass_g", "harvested_product_g",
		"harvested_substrate_g", "harvested_volume_l",
	}
}

// productColumn turns a product label into a CSV column name, e.g.
// "Monoclonal Antibody" -> "monoclonal_antibody_g_l".
func productColumn(product string) string {
	label := strings.ToLower(strings.TrimSpace(product))
	label = strings.ReplaceAll(label, " ", "_")
	if label == "" {
		label = "product"
	}
	return label + "_g_l"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// WriteSeriesCSV writes one row per integration step.
func WriteSeriesCSV(path string, res *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating series CSV: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(seriesColumns(res.Product)); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, s := range res.Series {
		row := []string{
			formatFloat(s.Time),
			formatFloat(s.Substrate),
			formatFloat(s.Biomass),
			formatFloat(s.Volume),
			formatFloat(s.Product),
			formatFloat(s.GrowthRate),
			formatFloat(s.FedSubstrate),
			formatFloat(s.HarvestedBiomass),
			formatFloat(s.HarvestedProduct),
			formatFloat(s.HarvestedSubstrate),
			formatFloat(s.HarvestedVolume),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteMetricsCSV writes the metrics table for one or more runs.
func WriteMetricsCSV(path string, results ...*sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating metrics CSV: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(metricsColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, res := range results {
		m := res.Metrics
		row := []string{
			res.RunID,
			res.Scenario,
			string(res.Params.Mode),
			res.Product,
			formatFloat(res.Params.Duration),
			strconv.Itoa(res.Params.Steps()),
			formatFloat(m.BiomassProductivity),
			formatFloat(m.ProductProductivity),
			formatFloat(m.TotalBiomass),
			formatFloat(m.TotalProduct),
			formatFloat(m.BiomassYield),
			formatFloat(m.ProductYield),
			formatFloat(m.SubstrateSupplied),
			formatFloat(m.SubstrateConsumed),
			formatFloat(m.SubstrateConversion),
			formatFloat(m.MaxGrowthRate),
			strconv.FormatBool(res.Crash.Crashed),
			formatFloat(res.Crash.CrashTime),
			strconv.Itoa(res.Anomalies),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing metrics row for run %s: %w", res.RunID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
