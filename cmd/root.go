package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string // Log verbosity level, shared by all subcommands

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "bioproc",
	Short: "Monod-kinetics simulator for single-species bioprocess cultures",
	Long: `bioproc simulates substrate, biomass, and product concentrations in a
stirred single-species culture under batch, fed-batch, repeated fed-batch,
or bleed-perfusion operation, and reports mass-accounting metrics and
culture-crash diagnostics for each run.`,
}

// setupLogging applies the --log flag. Every subcommand calls it first.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")
}
