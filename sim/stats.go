// sim/stats.go
package sim

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stat is the five-number summary of one variable over a series.
type Stat struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
}

// SeriesSummary holds per-variable statistics over a full run -- the quick
// shape of a series without scanning it.
type SeriesSummary struct {
	Substrate  Stat `json:"substrate"`
	Biomass    Stat `json:"biomass"`
	Volume     Stat `json:"volume"`
	Product    Stat `json:"product"`
	GrowthRate Stat `json:"growth_rate"`
}

// Summarize computes summary statistics for every tracked variable.
func Summarize(series TimeSeries) SeriesSummary {
	return SeriesSummary{
		Substrate:  summarize(column(series, func(s State) float64 { return s.Substrate })),
		Biomass:    summarize(column(series, func(s State) float64 { return s.Biomass })),
		Volume:     summarize(column(series, func(s State) float64 { return s.Volume })),
		Product:    summarize(column(series, func(s State) float64 { return s.Product })),
		GrowthRate: summarize(column(series, func(s State) float64 { return s.GrowthRate })),
	}
}

func column(series TimeSeries, f func(State) float64) []float64 {
	xs := make([]float64, len(series))
	for i, s := range series {
		xs[i] = f(s)
	}
	return xs
}

func summarize(xs []float64) Stat {
	if len(xs) == 0 {
		return Stat{}
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	st := Stat{
		Min:    floats.Min(xs),
		Max:    floats.Max(xs),
		Mean:   stat.Mean(xs, nil),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(xs) > 1 {
		st.Std = stat.StdDev(xs, nil)
	}
	return st
}
