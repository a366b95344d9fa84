package scenario

// Built-in scenario presets for common cultivation patterns.
// Each constructor returns a fresh, valid Scenario ready to run or export.

import (
	"strings"

	"github.com/mostinn/bioprocessing-app/sim"
)

// PresetClassicalBatch is the reference fermentation: everything charged up
// front, no flows, growth until the substrate runs out.
func PresetClassicalBatch() *Scenario {
	return &Scenario{
		Name:        "Classical Batch Culture",
		Description: "All nutrients added at the start; no input or output during cultivation.",
		Params: sim.Params{
			Mode:             sim.Batch,
			InitialSubstrate: 20.0,
			InitialBiomass:   0.5,
			InitialVolume:    1.0,
			MuMax:            0.25,
			Ks:               1.0,
			Yxs:              0.45,
			Yxp:              0.15,
			Product:          "Ethanol",
			Duration:         DefaultDuration,
			TimeStep:         DefaultTimeStep,
		},
	}
}

// PresetSubstrateLimitedFedBatch trickles concentrated feed into a lean
// starting charge, holding growth substrate-limited.
func PresetSubstrateLimitedFedBatch() *Scenario {
	return &Scenario{
		Name:        "Substrate-Limited Fed-Batch",
		Description: "Concentrated nutrient feed added slowly to extend growth past the initial charge.",
		Params: sim.Params{
			Mode:             sim.FedBatch,
			InitialSubstrate: 5.0,
			InitialBiomass:   1.0,
			InitialVolume:    1.0,
			MuMax:            0.3,
			Ks:               0.2,
			Yxs:              0.5,
			Yxp:              0.2,
			Product:          "Recombinant Protein",
			FeedRate:         0.0125, // a quarter of the vessel over 20 h
			FeedSubstrate:    100.0,
			Duration:         DefaultDuration,
			TimeStep:         DefaultTimeStep,
		},
	}
}

// PresetMultiCycleProduction harvests half the vessel once per day across
// five cycles, with the feed replacing each harvest over the following cycle.
func PresetMultiCycleProduction() *Scenario {
	return &Scenario{
		Name:        "Multi-Cycle Production",
		Description: "Partial harvest once per cycle with the same inoculum carried across cycles.",
		Params: sim.Params{
			Mode:             sim.RepeatedFedBatch,
			InitialSubstrate: 15.0,
			InitialBiomass:   1.5,
			InitialVolume:    2.0,
			MuMax:            0.35,
			Ks:               0.8,
			Yxs:              0.55,
			Yxp:              0.25,
			Product:          "Fatty Acids",
			FeedRate:         1.0 / 24, // replaces one harvest volume per cycle
			FeedSubstrate:    150.0,
			HarvestVolume:    1.0,
			CycleTime:        24.0,
			Cycles:           5,
			Duration:         120.0,
			TimeStep:         DefaultTimeStep,
		},
	}
}

// PresetHighDensityPerfusion runs a cell-retention culture at steady volume
// with a small effective biomass escape.
func PresetHighDensityPerfusion() *Scenario {
	return &Scenario{
		Name:        "High-Density Perfusion",
		Description: "Continuous feed and removal with most cells retained in the vessel.",
		Params: sim.Params{
			Mode:             sim.BleedPerfusion,
			InitialSubstrate: 50.0,
			InitialBiomass:   2.0,
			InitialVolume:    1.0,
			MuMax:            0.4,
			Ks:               0.7,
			Yxs:              0.6,
			Yxp:              0.3,
			Product:          "Monoclonal Antibody",
			FeedRate:         0.2,
			FeedSubstrate:    300.0,
			BleedRate:        0.2,
			CellRetention:    0.85,
			Duration:         DefaultDuration,
			TimeStep:         DefaultTimeStep,
		},
	}
}

// PresetHighProductivityPerfusion pushes the perfusion exchange rate up for
// maximum throughput at near-total cell retention.
func PresetHighProductivityPerfusion() *Scenario {
	return &Scenario{
		Name:        "High-Productivity Perfusion",
		Description: "Fast medium exchange and tight cell retention for the highest stable output.",
		Params: sim.Params{
			Mode:             sim.BleedPerfusion,
			InitialSubstrate: 60.0,
			InitialBiomass:   5.0,
			InitialVolume:    1.0,
			MuMax:            0.5,
			Ks:               0.5,
			Yxs:              0.6,
			Yxp:              0.5,
			Product:          "High-Value Protein",
			FeedRate:         0.5,
			FeedSubstrate:    400.0,
			BleedRate:        0.5,
			CellRetention:    0.89,
			Duration:         DefaultDuration,
			TimeStep:         DefaultTimeStep,
		},
	}
}

// Presets returns the built-in library in display order.
func Presets() []*Scenario {
	return []*Scenario{
		PresetClassicalBatch(),
		PresetSubstrateLimitedFedBatch(),
		PresetMultiCycleProduction(),
		PresetHighDensityPerfusion(),
		PresetHighProductivityPerfusion(),
	}
}

// Preset returns the named built-in scenario. Matching is case-insensitive.
func Preset(name string) (*Scenario, bool) {
	for _, sc := range Presets() {
		if strings.EqualFold(sc.Name, name) {
			return sc, true
		}
	}
	return nil, false
}
