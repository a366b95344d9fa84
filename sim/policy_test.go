package sim

import (
	"math"
	"testing"
)

func TestBatchPolicy_NoFlows(t *testing.T) {
	p := batchParams()
	fl := newModePolicy(&p).flows(State{Time: 1, Volume: 1}, 0.1)
	if fl != (stepFlows{}) {
		t.Errorf("batch flows: got %+v, want all zero", fl)
	}
}

func TestFeedPolicy_AddsVolumeAndSubstrate(t *testing.T) {
	p := batchParams()
	p.Mode = FedBatch
	p.FeedRate = 0.2
	p.FeedSubstrate = 100

	fl := newModePolicy(&p).flows(State{Volume: 1}, 0.1)
	if math.Abs(fl.addedVolume-0.02) > 1e-12 {
		t.Errorf("added volume: got %v, want 0.02", fl.addedVolume)
	}
	if math.Abs(fl.addedSubstrate-2.0) > 1e-12 {
		t.Errorf("added substrate mass: got %v, want 2.0", fl.addedSubstrate)
	}
	if fl.removedVolume != 0 || fl.cellRetention != 0 {
		t.Errorf("fed-batch must not remove culture: %+v", fl)
	}
}

func TestHarvestCyclePolicy_FiresAtFirstStepEndReachingMark(t *testing.T) {
	// GIVEN a cycle time that dt does not divide evenly
	p := batchParams()
	p.Mode = RepeatedFedBatch
	p.CycleTime = 1.0
	p.Cycles = 3
	p.HarvestVolume = 0.25
	p.Duration = 3
	p.TimeStep = 0.3

	pol := newModePolicy(&p)

	// WHEN flows are requested for each step in order
	var removals []float64
	for i := 0; i < p.Steps(); i++ {
		s := State{Time: float64(i) * p.TimeStep, Volume: 1}
		removals = append(removals, pol.flows(s, p.TimeStep).removedVolume)
	}

	// THEN the harvest fires during the steps ending at 1.2h and 2.1h -- the
	// first step boundaries at or past the 1.0h and 2.0h cycle marks.
	for i, r := range removals {
		end := float64(i+1) * p.TimeStep
		switch i {
		case 3, 6:
			if math.Abs(r-0.25) > 1e-12 {
				t.Errorf("step ending %.1fh: removal %v, want 0.25", end, r)
			}
		default:
			if r != 0 {
				t.Errorf("step ending %.1fh: removal %v, want 0", end, r)
			}
		}
	}
}

func TestHarvestCyclePolicy_TwoMarksInOneStep_EachFireOnce(t *testing.T) {
	p := batchParams()
	p.Mode = RepeatedFedBatch
	p.CycleTime = 0.1
	p.Cycles = 3 // marks at 0.1h and 0.2h
	p.HarvestVolume = 0.1
	p.Duration = 1
	p.TimeStep = 0.5

	pol := newModePolicy(&p)
	first := pol.flows(State{Time: 0, Volume: 1}, p.TimeStep)
	second := pol.flows(State{Time: 0.5, Volume: 1}, p.TimeStep)

	if math.Abs(first.removedVolume-0.2) > 1e-12 {
		t.Errorf("both marks inside the first step: removal %v, want 0.2", first.removedVolume)
	}
	if second.removedVolume != 0 {
		t.Errorf("marks must not re-fire: second step removal %v, want 0", second.removedVolume)
	}
}

func TestHarvestMarks_FinalCycleNeverHarvests(t *testing.T) {
	p := batchParams()
	p.Mode = RepeatedFedBatch
	p.CycleTime = 8
	p.Cycles = 3
	p.Duration = 24
	p.TimeStep = 0.1

	marks := harvestMarks(&p)
	if len(marks) != 2 {
		t.Fatalf("marks: got %v, want exactly [8 16]", marks)
	}
	if marks[0] != 8 || marks[1] != 16 {
		t.Errorf("marks: got %v, want [8 16]", marks)
	}
}

func TestHarvestMarks_BeyondHorizon_Truncated(t *testing.T) {
	p := batchParams()
	p.Mode = RepeatedFedBatch
	p.CycleTime = 10
	p.Cycles = 3
	p.Duration = 5
	p.TimeStep = 0.1

	if marks := harvestMarks(&p); len(marks) != 0 {
		t.Errorf("marks past the horizon must be dropped, got %v", marks)
	}
}

func TestHarvestMarks_SingleCycle_Empty(t *testing.T) {
	p := batchParams()
	p.Mode = RepeatedFedBatch
	p.CycleTime = 8
	p.Cycles = 1
	p.Duration = 24
	p.TimeStep = 0.1

	if marks := harvestMarks(&p); len(marks) != 0 {
		t.Errorf("a single cycle has no harvest, got marks %v", marks)
	}
}

func TestPerfusionPolicy_BleedCarriesRetention(t *testing.T) {
	p := batchParams()
	p.Mode = BleedPerfusion
	p.FeedRate = 0.2
	p.FeedSubstrate = 300
	p.BleedRate = 0.05
	p.CellRetention = 0.95

	fl := newModePolicy(&p).flows(State{Volume: 1}, 0.1)
	if math.Abs(fl.addedVolume-0.02) > 1e-12 {
		t.Errorf("added volume: got %v, want 0.02", fl.addedVolume)
	}
	if math.Abs(fl.removedVolume-0.005) > 1e-12 {
		t.Errorf("removed volume: got %v, want 0.005", fl.removedVolume)
	}
	if fl.cellRetention != 0.95 {
		t.Errorf("retention: got %v, want 0.95", fl.cellRetention)
	}
}
