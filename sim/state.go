package sim

// State is one snapshot of the culture, appended to the series once per step
// and immutable afterwards. Concentration fields describe what is in the
// vessel at Time; the cumulative fields account for everything that has
// crossed the vessel boundary since t=0, which makes the metrics engine and
// tabular export pure functions of the series.
type State struct {
	Time       float64 `json:"time"`        // h
	Substrate  float64 `json:"substrate"`   // S, g/L
	Biomass    float64 `json:"biomass"`     // X, g/L
	Volume     float64 `json:"volume"`      // V, L
	Product    float64 `json:"product"`     // P, g/L
	GrowthRate float64 `json:"growth_rate"` // mu evaluated at this snapshot's S, 1/h

	// Run-to-date boundary accounting (all cumulative since t=0)
	FedSubstrate       float64 `json:"fed_substrate"`       // substrate mass added by feeding, g
	HarvestedBiomass   float64 `json:"harvested_biomass"`   // biomass mass removed by harvest/bleed, g
	HarvestedProduct   float64 `json:"harvested_product"`   // product mass removed by harvest/bleed, g
	HarvestedSubstrate float64 `json:"harvested_substrate"` // substrate mass removed unconsumed, g
	HarvestedVolume    float64 `json:"harvested_volume"`    // culture volume removed, L
}

// TimeSeries is the ordered sequence of snapshots from one run: index = step
// number, time-ascending, element 0 = initial state. Owned by the integrator
// while running, read-only once part of a Result.
type TimeSeries []State

// Final returns the last snapshot. It panics on an empty series, which cannot
// occur for a series produced by Run (element 0 always exists).
func (ts TimeSeries) Final() State {
	return ts[len(ts)-1]
}
