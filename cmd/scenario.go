package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mostinn/bioprocessing-app/sim/scenario"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Inspect and manage the scenario library",
}

// resolveScenario accepts either a preset name or a path to a scenario YAML
// file.
func resolveScenario(ref string) (*scenario.Scenario, error) {
	if sc, ok := scenario.Preset(ref); ok {
		return sc, nil
	}
	if _, err := os.Stat(ref); err == nil {
		return scenario.Load(ref)
	}
	return nil, fmt.Errorf("unknown scenario %q: not a preset (see `bioproc scenario list`) and not a readable file", ref)
}

// scenarioFileName converts a scenario name to a YAML file name.
func scenarioFileName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-") + ".yaml"
}

// --- bioproc scenario list ---

var scenarioListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in scenario presets",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		fmt.Printf("%-30s  %-20s  %s\n", "NAME", "MODE", "DESCRIPTION")
		for _, sc := range scenario.Presets() {
			fmt.Printf("%-30s  %-20s  %s\n", sc.Name, sc.Params.Mode, sc.Description)
		}
	},
}

// --- bioproc scenario show ---

var showRef string

var scenarioShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a scenario as YAML",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		sc, err := resolveScenario(showRef)
		if err != nil {
			logrus.Fatalf("Resolving scenario: %v", err)
		}
		data, err := yaml.Marshal(sc)
		if err != nil {
			logrus.Fatalf("YAML marshal failed: %v", err)
		}
		fmt.Print(string(data))
	},
}

// --- bioproc scenario export ---

var (
	exportRefs []string
	exportPath string
)

var scenarioExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write scenarios to an editable file",
	Long: `Write scenarios to a file a user can edit and pass back to run. A .json
path produces a scenario library; any other path produces a single-scenario
YAML file. With no --scenario flags, every preset is exported.`,
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		var scenarios []*scenario.Scenario
		if len(exportRefs) == 0 {
			scenarios = scenario.Presets()
		} else {
			for _, ref := range exportRefs {
				sc, err := resolveScenario(ref)
				if err != nil {
					logrus.Fatalf("Resolving scenario: %v", err)
				}
				scenarios = append(scenarios, sc)
			}
		}

		if strings.HasSuffix(exportPath, ".json") {
			if err := scenario.ExportJSON(exportPath, scenarios); err != nil {
				logrus.Fatalf("Exporting library: %v", err)
			}
			fmt.Printf("Exported %d scenarios to %s\n", len(scenarios), exportPath)
			return
		}
		if len(scenarios) != 1 {
			logrus.Fatalf("YAML export takes exactly one --scenario; use a .json path for a library of %d", len(scenarios))
		}
		if err := scenarios[0].Save(exportPath); err != nil {
			logrus.Fatalf("Exporting scenario: %v", err)
		}
		fmt.Printf("Exported %q to %s\n", scenarios[0].Name, exportPath)
	},
}

// --- bioproc scenario import ---

var (
	importPath   string
	importOutDir string
)

var scenarioImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON scenario library as YAML files",
	Long: `Import a JSON scenario library, including libraries saved by earlier
releases, and write each scenario as a YAML file ready for run --scenario.`,
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		scenarios, err := scenario.ImportJSON(importPath)
		if err != nil {
			logrus.Fatalf("Importing library: %v", err)
		}
		for _, sc := range scenarios {
			out := filepath.Join(importOutDir, scenarioFileName(sc.Name))
			if err := sc.Save(out); err != nil {
				logrus.Fatalf("Writing %s: %v", out, err)
			}
			fmt.Printf("Wrote %s\n", out)
		}
	},
}

func init() {
	scenarioShowCmd.Flags().StringVar(&showRef, "scenario", "", "Preset name or scenario YAML file")
	_ = scenarioShowCmd.MarkFlagRequired("scenario")

	scenarioExportCmd.Flags().StringSliceVar(&exportRefs, "scenario", nil, "Scenario to export (preset name or YAML file); repeatable")
	scenarioExportCmd.Flags().StringVar(&exportPath, "file", "scenarios.json", "Output file (.json library or single-scenario .yaml)")

	scenarioImportCmd.Flags().StringVar(&importPath, "file", "", "JSON scenario library to import")
	scenarioImportCmd.Flags().StringVar(&importOutDir, "out-dir", ".", "Directory for the generated YAML files")
	_ = scenarioImportCmd.MarkFlagRequired("file")

	scenarioCmd.AddCommand(scenarioListCmd)
	scenarioCmd.AddCommand(scenarioShowCmd)
	scenarioCmd.AddCommand(scenarioExportCmd)
	scenarioCmd.AddCommand(scenarioImportCmd)

	rootCmd.AddCommand(scenarioCmd)
}
