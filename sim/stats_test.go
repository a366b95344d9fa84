package sim

import (
	"testing"

	"github.com/mostinn/bioprocessing-app/sim/internal/testutil"
)

func TestSummarize_KnownValues(t *testing.T) {
	series := TimeSeries{
		{Time: 0, Substrate: 1, Biomass: 4, Volume: 2},
		{Time: 1, Substrate: 2, Biomass: 3, Volume: 2},
		{Time: 2, Substrate: 3, Biomass: 2, Volume: 2},
		{Time: 3, Substrate: 4, Biomass: 1, Volume: 2},
	}
	sum := Summarize(series)

	testutil.AssertFloat64Equal(t, "substrate min", 1, sum.Substrate.Min, 1e-12)
	testutil.AssertFloat64Equal(t, "substrate max", 4, sum.Substrate.Max, 1e-12)
	testutil.AssertFloat64Equal(t, "substrate mean", 2.5, sum.Substrate.Mean, 1e-12)
	testutil.AssertFloat64Equal(t, "substrate median", 2, sum.Substrate.Median, 1e-12)
	testutil.AssertFloat64Equal(t, "substrate std", 1.2909944487358056, sum.Substrate.Std, 1e-9)

	// Biomass holds the same values in reverse order; order must not matter.
	if sum.Biomass != sum.Substrate {
		t.Errorf("same sample in reverse order summarized differently:\n%+v\n%+v", sum.Biomass, sum.Substrate)
	}

	// A constant column has zero spread.
	testutil.AssertFloat64Equal(t, "volume mean", 2, sum.Volume.Mean, 1e-12)
	if sum.Volume.Std != 0 {
		t.Errorf("constant volume std: got %v, want 0", sum.Volume.Std)
	}

	// Product never appeared, so its whole summary is zero.
	if sum.Product != (Stat{}) {
		t.Errorf("all-zero product column: got %+v", sum.Product)
	}
}

func TestSummarize_SingleSample(t *testing.T) {
	sum := Summarize(TimeSeries{{Substrate: 7}})
	want := Stat{Min: 7, Max: 7, Mean: 7, Median: 7, Std: 0}
	if sum.Substrate != want {
		t.Errorf("single sample: got %+v, want %+v", sum.Substrate, want)
	}
}

func TestSummarize_EmptySeries(t *testing.T) {
	if sum := Summarize(nil); sum != (SeriesSummary{}) {
		t.Errorf("empty series must summarize to zero values, got %+v", sum)
	}
}
