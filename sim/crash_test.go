package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// seriesFromBiomass builds a series with one sample per hour, varying only
// the biomass channel.
func seriesFromBiomass(xs []float64) TimeSeries {
	series := make(TimeSeries, len(xs))
	for i, x := range xs {
		series[i] = State{Time: float64(i), Biomass: x}
	}
	return series
}

func TestDetectCrash(t *testing.T) {
	tests := []struct {
		name    string
		biomass []float64
		want    CrashReport
	}{
		{
			name:    "washout after establishing",
			biomass: []float64{0.05, 0.2, 5.0, 3.0, 0.5, 0.009, 0.001},
			want: CrashReport{
				Crashed:         true,
				CrashIndex:      5,
				CrashTime:       5,
				InflectionIndex: 2,
				InflectionTime:  2,
				PeakBiomass:     5.0,
			},
		},
		{
			name:    "healthy growth never crashes",
			biomass: []float64{0.05, 0.1, 1, 2, 4, 4.5},
			want: CrashReport{
				InflectionIndex: 5,
				InflectionTime:  5,
				PeakBiomass:     4.5,
			},
		},
		{
			name:    "culture that never establishes cannot crash",
			biomass: []float64{0.05, 0.08, 0.009, 0.001},
			want: CrashReport{
				InflectionIndex: 1,
				InflectionTime:  1,
				PeakBiomass:     0.08,
			},
		},
		{
			name:    "plateau reports first index of the peak",
			biomass: []float64{1, 2, 5, 5, 5},
			want: CrashReport{
				InflectionIndex: 2,
				InflectionTime:  2,
				PeakBiomass:     5,
			},
		},
		{
			name:    "thresholds are inclusive",
			biomass: []float64{0.1, 0.01},
			want: CrashReport{
				Crashed:         true,
				CrashIndex:      1,
				CrashTime:       1,
				InflectionIndex: 0,
				InflectionTime:  0,
				PeakBiomass:     0.1,
			},
		},
		{
			name:    "empty series",
			biomass: nil,
			want:    CrashReport{},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectCrash(seriesFromBiomass(tc.biomass), DefaultCrashThresholds())
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectCrash_Pure(t *testing.T) {
	series := seriesFromBiomass([]float64{0.5, 2, 0.005})
	first := DetectCrash(series, DefaultCrashThresholds())
	second := DetectCrash(series, DefaultCrashThresholds())
	assert.Equal(t, first, second)
}

func TestRun_PerfusionWashout_FlagsCrash(t *testing.T) {
	// GIVEN a bleed rate whose dilution outruns the maximum growth rate
	p := batchParams()
	p.Mode = BleedPerfusion
	p.MuMax = 0.1
	p.InitialBiomass = 0.5
	p.FeedRate = 0.2
	p.FeedSubstrate = 10
	p.BleedRate = 0.2
	p.CellRetention = 0
	p.Duration = 100

	// WHEN the run completes
	res := mustRun(t, p)

	// THEN the culture washes out well before the horizon
	if !res.Crash.Crashed {
		t.Fatal("dilution above mu_max must wash the culture out")
	}
	if res.Crash.CrashTime < 20 || res.Crash.CrashTime > 60 {
		t.Errorf("crash time %v h outside the expected washout window", res.Crash.CrashTime)
	}
	if res.Crash.InflectionIndex != 0 {
		t.Errorf("biomass only decays, peak should be the initial sample, got index %d", res.Crash.InflectionIndex)
	}
	assert.Equal(t, 0.5, res.Crash.PeakBiomass)
}

func TestRun_HealthyBatch_NoCrash(t *testing.T) {
	res := mustRun(t, batchParams())
	if res.Crash.Crashed {
		t.Fatalf("healthy batch flagged as crashed: %+v", res.Crash)
	}
	if res.Crash.PeakBiomass < 1 {
		t.Errorf("batch culture should have grown well past establish, peak %v", res.Crash.PeakBiomass)
	}
}
