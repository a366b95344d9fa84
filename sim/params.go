package sim

import (
	"fmt"
	"math"
	"strings"
)

// Mode identifies the bioreactor operating mode. The set is closed: the four
// constants below are the only values Validate accepts, and every mode maps to
// exactly one flow policy in policy.go.
type Mode string

const (
	Batch            Mode = "batch"
	FedBatch         Mode = "fed-batch"
	RepeatedFedBatch Mode = "repeated-fed-batch"
	BleedPerfusion   Mode = "bleed-perfusion"
)

// ValidModes is the set of recognized operating mode names.
// Shared by Validate() and newModePolicy() to avoid duplication.
var ValidModes = map[Mode]bool{Batch: true, FedBatch: true, RepeatedFedBatch: true, BleedPerfusion: true}

// ParseMode normalizes a mode name ("Bleed-Perfusion", "repeated fed-batch", ...)
// to its canonical Mode value. Returns an error for unrecognized names.
func ParseMode(name string) (Mode, error) {
	m := Mode(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-"))
	if !ValidModes[m] {
		return "", fmt.Errorf("%w: unknown mode %q; valid: batch, fed-batch, repeated-fed-batch, bleed-perfusion", ErrInvalidConfig, name)
	}
	return m, nil
}

// Params is the immutable parameter set for one simulation run.
// Fields not used by the selected mode are ignored (left at zero).
// Units: concentrations g/L, volumes L, flows L/h, times h, rates 1/h.
type Params struct {
	Mode Mode `yaml:"mode" json:"mode"`

	// Initial state
	InitialSubstrate float64 `yaml:"initial_substrate" json:"initial_substrate"` // S0, g/L
	InitialBiomass   float64 `yaml:"initial_biomass" json:"initial_biomass"`     // X0, g/L
	InitialVolume    float64 `yaml:"initial_volume" json:"initial_volume"`       // V0, L

	// Monod kinetics
	MuMax float64 `yaml:"mu_max" json:"mu_max"` // maximum specific growth rate, 1/h
	Ks    float64 `yaml:"ks" json:"ks"`         // half-saturation constant, g/L
	Yxs   float64 `yaml:"y_xs" json:"y_xs"`     // g biomass per g substrate
	Yxp   float64 `yaml:"y_xp" json:"y_xp"`     // g product per g biomass

	Product string `yaml:"product_name,omitempty" json:"product_name,omitempty"` // display label only

	// Feeding (fed-batch, repeated fed-batch, bleed-perfusion)
	FeedRate      float64 `yaml:"feed_rate,omitempty" json:"feed_rate,omitempty"`           // F, L/h
	FeedSubstrate float64 `yaml:"feed_substrate,omitempty" json:"feed_substrate,omitempty"` // S_feed, g/L

	// Harvest cycles (repeated fed-batch)
	HarvestVolume float64 `yaml:"harvest_volume,omitempty" json:"harvest_volume,omitempty"` // L removed per harvest
	CycleTime     float64 `yaml:"cycle_time,omitempty" json:"cycle_time,omitempty"`         // h between harvests
	Cycles        int     `yaml:"num_cycles,omitempty" json:"num_cycles,omitempty"`

	// Bleed (bleed-perfusion)
	BleedRate     float64 `yaml:"bleed_rate,omitempty" json:"bleed_rate,omitempty"`         // F_out, L/h
	CellRetention float64 `yaml:"cell_retention,omitempty" json:"cell_retention,omitempty"` // fraction of cells kept from the bleed stream, [0,1]

	// Integration horizon
	Duration float64 `yaml:"duration" json:"duration"`   // total simulated time, h
	TimeStep float64 `yaml:"time_step" json:"time_step"` // dt, h
}

// Steps returns the number of integration steps: Duration quantized to whole
// multiples of TimeStep. The run horizon is Steps()*TimeStep; no fractional
// trailing step is synthesized.
func (p *Params) Steps() int {
	return int(math.Round(p.Duration / p.TimeStep))
}

// Validate checks every field against its documented range. It returns an
// error wrapping ErrInvalidConfig on the first violation, before any
// simulation state exists; a Params that passes here cannot fail mid-run.
func (p *Params) Validate() error {
	if !ValidModes[p.Mode] {
		return fmt.Errorf("%w: unknown mode %q; valid: batch, fed-batch, repeated-fed-batch, bleed-perfusion", ErrInvalidConfig, p.Mode)
	}
	for name, v := range map[string]float64{
		"initial_substrate": p.InitialSubstrate,
		"initial_biomass":   p.InitialBiomass,
		"initial_volume":    p.InitialVolume,
		"mu_max":            p.MuMax,
		"ks":                p.Ks,
		"y_xs":              p.Yxs,
		"y_xp":              p.Yxp,
		"feed_rate":         p.FeedRate,
		"feed_substrate":    p.FeedSubstrate,
		"harvest_volume":    p.HarvestVolume,
		"cycle_time":        p.CycleTime,
		"bleed_rate":        p.BleedRate,
		"cell_retention":    p.CellRetention,
		"duration":          p.Duration,
		"time_step":         p.TimeStep,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be a finite number, got %f", ErrInvalidConfig, name, v)
		}
		if v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %f", ErrInvalidConfig, name, v)
		}
	}
	if p.InitialVolume <= 0 {
		return fmt.Errorf("%w: initial_volume must be positive, got %f", ErrInvalidConfig, p.InitialVolume)
	}
	if p.Ks <= 0 {
		return fmt.Errorf("%w: ks must be positive, got %f", ErrInvalidConfig, p.Ks)
	}
	if p.Yxs <= 0 {
		return fmt.Errorf("%w: y_xs must be positive, got %f", ErrInvalidConfig, p.Yxs)
	}
	if p.TimeStep <= 0 {
		return fmt.Errorf("%w: time_step must be positive, got %f", ErrInvalidConfig, p.TimeStep)
	}
	if p.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, p.Duration)
	}
	if p.Steps() < 1 {
		return fmt.Errorf("%w: duration %f too short for time_step %f (no full step fits)", ErrInvalidConfig, p.Duration, p.TimeStep)
	}
	if p.Mode == RepeatedFedBatch {
		if p.CycleTime <= 0 {
			return fmt.Errorf("%w: cycle_time must be positive for repeated-fed-batch, got %f", ErrInvalidConfig, p.CycleTime)
		}
		if p.Cycles < 1 {
			return fmt.Errorf("%w: num_cycles must be at least 1, got %d", ErrInvalidConfig, p.Cycles)
		}
	}
	if p.Mode == BleedPerfusion && p.CellRetention > 1 {
		return fmt.Errorf("%w: cell_retention must be in [0,1], got %f", ErrInvalidConfig, p.CellRetention)
	}
	return nil
}
