package cmd

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mostinn/bioprocessing-app/sim"
	"github.com/mostinn/bioprocessing-app/sim/export"
	"github.com/mostinn/bioprocessing-app/sim/history"
	"github.com/mostinn/bioprocessing-app/sim/scenario"
)

var (
	// Initial state flags
	initialSubstrate float64 // S0 (g/L)
	initialBiomass   float64 // X0 (g/L)
	initialVolume    float64 // V0 (L)

	// Monod kinetics flags
	muMax float64 // Maximum specific growth rate (1/h)
	ks    float64 // Half-saturation constant (g/L)
	yxs   float64 // Biomass yield on substrate (g/g)
	yxp   float64 // Product yield on biomass (g/g)

	productName string // Display label for the product trace

	// Mode and flow flags
	modeName      string  // Operating mode name
	feedRate      float64 // Feed flow F (L/h)
	feedSubstrate float64 // Feed substrate concentration (g/L)
	harvestVolume float64 // Volume removed per harvest (L)
	cycleTime     float64 // Hours between harvests
	numCycles     int     // Number of fill-and-drain cycles
	bleedRate     float64 // Bleed flow F_out (L/h)
	cellRetention float64 // Fraction of cells kept from the bleed stream

	// Integration horizon flags
	duration float64 // Total simulated time (h)
	timeStep float64 // Forward-Euler step (h)

	// Input and output flags
	scenarioRef    string // Preset name or YAML file to run
	seriesCSVPath  string // Write the time series as CSV
	metricsCSVPath string // Write run metrics as CSV
	chartPath      string // Render concentration traces as PNG
	archivePath    string // SQLite archive to append the run to
)

// runCmd executes one simulation from CLI flags or a stored scenario
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one culture simulation",
	Long: `Run one culture simulation, either from parameter flags or from a stored
scenario (--scenario takes a preset name or a YAML file). Parameter flags set
explicitly on the command line override the scenario's values.`,
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		sc, err := buildScenario(cmd)
		if err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}

		logrus.Infof("Starting %s run %q: %.1f h horizon, dt=%.3g h",
			sc.Params.Mode, sc.Name, sc.Params.Duration, sc.Params.TimeStep)

		res, err := scenario.Run(sc)
		if err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		reportRun(res)
		if err := writeRunOutputs(res); err != nil {
			logrus.Fatalf("Writing outputs: %v", err)
		}
	},
}

// buildScenario assembles the run configuration: the stored scenario when
// --scenario is given (with explicit flags layered on top), plain flag values
// otherwise.
func buildScenario(cmd *cobra.Command) (*scenario.Scenario, error) {
	if scenarioRef == "" {
		params, err := paramsFromFlags()
		if err != nil {
			return nil, err
		}
		return &scenario.Scenario{Name: "cli", Params: params}, nil
	}
	sc, err := resolveScenario(scenarioRef)
	if err != nil {
		return nil, err
	}
	if err := overrideChangedFlags(cmd, &sc.Params); err != nil {
		return nil, err
	}
	return sc, nil
}

// paramsFromFlags builds a parameter set from the flag values alone.
func paramsFromFlags() (sim.Params, error) {
	mode, err := sim.ParseMode(modeName)
	if err != nil {
		return sim.Params{}, err
	}
	return sim.Params{
		Mode:             mode,
		InitialSubstrate: initialSubstrate,
		InitialBiomass:   initialBiomass,
		InitialVolume:    initialVolume,
		MuMax:            muMax,
		Ks:               ks,
		Yxs:              yxs,
		Yxp:              yxp,
		Product:          productName,
		FeedRate:         feedRate,
		FeedSubstrate:    feedSubstrate,
		HarvestVolume:    harvestVolume,
		CycleTime:        cycleTime,
		Cycles:           numCycles,
		BleedRate:        bleedRate,
		CellRetention:    cellRetention,
		Duration:         duration,
		TimeStep:         timeStep,
	}, nil
}

// overrideChangedFlags copies every parameter flag the user set explicitly
// over the loaded scenario, so `--scenario classical-batch --duration 100`
// extends the run without editing the scenario file.
func overrideChangedFlags(cmd *cobra.Command, p *sim.Params) error {
	overrides := map[string]func() error{
		"substrate":      func() error { p.InitialSubstrate = initialSubstrate; return nil },
		"biomass":        func() error { p.InitialBiomass = initialBiomass; return nil },
		"volume":         func() error { p.InitialVolume = initialVolume; return nil },
		"mu-max":         func() error { p.MuMax = muMax; return nil },
		"ks":             func() error { p.Ks = ks; return nil },
		"yxs":            func() error { p.Yxs = yxs; return nil },
		"yxp":            func() error { p.Yxp = yxp; return nil },
		"product":        func() error { p.Product = productName; return nil },
		"feed-rate":      func() error { p.FeedRate = feedRate; return nil },
		"feed-substrate": func() error { p.FeedSubstrate = feedSubstrate; return nil },
		"harvest-volume": func() error { p.HarvestVolume = harvestVolume; return nil },
		"cycle-time":     func() error { p.CycleTime = cycleTime; return nil },
		"cycles":         func() error { p.Cycles = numCycles; return nil },
		"bleed-rate":     func() error { p.BleedRate = bleedRate; return nil },
		"cell-retention": func() error { p.CellRetention = cellRetention; return nil },
		"duration":       func() error { p.Duration = duration; return nil },
		"time-step":      func() error { p.TimeStep = timeStep; return nil },
		"mode": func() error {
			mode, err := sim.ParseMode(modeName)
			if err != nil {
				return err
			}
			p.Mode = mode
			return nil
		},
	}
	for name, apply := range overrides {
		if cmd.Flags().Changed(name) {
			if err := apply(); err != nil {
				return err
			}
		}
	}
	return nil
}

// reportRun prints the run outcome: headline state, mass-accounting metrics,
// crash diagnosis.
func reportRun(res *sim.Result) {
	final := res.Series.Final()
	fmt.Printf("Run %s: %s, %d steps, computed in %.3fs\n",
		res.RunID, res.Params.Mode, res.Params.Steps(), res.ComputeTime)
	fmt.Printf("Final state at %.1f h: X=%.4f g/L, S=%.4f g/L, P=%.4f g/L, V=%.3f L\n",
		final.Time, final.Biomass, final.Substrate, final.Product, final.Volume)
	res.Metrics.Print(res.Product)
	if res.Crash.Crashed {
		fmt.Printf("CULTURE CRASH at t=%.2f h (growth peaked at t=%.2f h, peak X=%.4f g/L)\n",
			res.Crash.CrashTime, res.Crash.InflectionTime, res.Crash.PeakBiomass)
	}
	if res.Anomalies > 0 {
		logrus.Warnf("%d integration anomalies (clamped concentrations or an overdrained vessel); consider a smaller --time-step", res.Anomalies)
	}
}

// writeRunOutputs handles the optional --csv/--metrics-csv/--chart/--archive
// outputs for a completed run.
func writeRunOutputs(res *sim.Result) error {
	if seriesCSVPath != "" {
		if err := export.WriteSeriesCSV(seriesCSVPath, res); err != nil {
			return err
		}
		logrus.Infof("Time series written to %s", seriesCSVPath)
	}
	if metricsCSVPath != "" {
		if err := export.WriteMetricsCSV(metricsCSVPath, res); err != nil {
			return err
		}
		logrus.Infof("Metrics written to %s", metricsCSVPath)
	}
	if chartPath != "" {
		if err := export.RenderSeriesChart(chartPath, res); err != nil {
			return err
		}
		logrus.Infof("Chart written to %s", chartPath)
	}
	if archivePath != "" {
		return archiveRuns(archivePath, res)
	}
	return nil
}

// archiveRuns appends completed runs to the SQLite archive. Shared by run and
// compare.
func archiveRuns(path string, results ...*sim.Result) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	for _, res := range results {
		if err := store.SaveRun(context.Background(), res); err != nil {
			return err
		}
		logrus.Infof("Run %s archived in %s", res.RunID, path)
	}
	return nil
}

// init sets up the run flags; defaults reproduce the classical batch preset
func init() {
	runCmd.Flags().Float64Var(&initialSubstrate, "substrate", 20.0, "Initial substrate concentration S0 (g/L)")
	runCmd.Flags().Float64Var(&initialBiomass, "biomass", 0.5, "Initial biomass concentration X0 (g/L)")
	runCmd.Flags().Float64Var(&initialVolume, "volume", 1.0, "Initial culture volume V0 (L)")

	runCmd.Flags().Float64Var(&muMax, "mu-max", 0.25, "Maximum specific growth rate (1/h)")
	runCmd.Flags().Float64Var(&ks, "ks", 1.0, "Half-saturation constant (g/L)")
	runCmd.Flags().Float64Var(&yxs, "yxs", 0.45, "Biomass yield on substrate (g/g)")
	runCmd.Flags().Float64Var(&yxp, "yxp", 0.15, "Product yield on biomass (g/g)")
	runCmd.Flags().StringVar(&productName, "product", "", "Product display name (e.g. Ethanol)")

	runCmd.Flags().StringVar(&modeName, "mode", "batch", "Operating mode (batch, fed-batch, repeated-fed-batch, bleed-perfusion)")
	runCmd.Flags().Float64Var(&feedRate, "feed-rate", 0, "Feed flow rate F (L/h)")
	runCmd.Flags().Float64Var(&feedSubstrate, "feed-substrate", 0, "Substrate concentration in the feed (g/L)")
	runCmd.Flags().Float64Var(&harvestVolume, "harvest-volume", 0, "Volume removed per harvest (L)")
	runCmd.Flags().Float64Var(&cycleTime, "cycle-time", 0, "Hours between harvests (h)")
	runCmd.Flags().IntVar(&numCycles, "cycles", 0, "Number of fill-and-drain cycles")
	runCmd.Flags().Float64Var(&bleedRate, "bleed-rate", 0, "Bleed flow rate F_out (L/h)")
	runCmd.Flags().Float64Var(&cellRetention, "cell-retention", 0, "Fraction of cells retained from the bleed stream [0,1]")

	runCmd.Flags().Float64Var(&duration, "duration", scenario.DefaultDuration, "Total simulated time (h)")
	runCmd.Flags().Float64Var(&timeStep, "time-step", scenario.DefaultTimeStep, "Integration time step (h)")

	runCmd.Flags().StringVar(&scenarioRef, "scenario", "", "Preset name or scenario YAML file to run")
	runCmd.Flags().StringVar(&seriesCSVPath, "csv", "", "Write the simulated time series to this CSV file")
	runCmd.Flags().StringVar(&metricsCSVPath, "metrics-csv", "", "Write the run metrics to this CSV file")
	runCmd.Flags().StringVar(&chartPath, "chart", "", "Render concentration traces to this PNG file")
	runCmd.Flags().StringVar(&archivePath, "archive", "", "Append the run to this SQLite archive")

	rootCmd.AddCommand(runCmd)
}
