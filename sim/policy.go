package sim

import (
	"github.com/sirupsen/logrus"
)

// stepFlows is the external mass/volume exchange a mode applies over one step,
// in addition to the biological rates. Removal takes the culture at its
// current concentrations; cellRetention is the fraction of biomass held back
// from the removed stream (0 for a representative sample, >0 when a retention
// device filters cells out of the bleed).
type stepFlows struct {
	addedVolume    float64 // L entering the vessel this step
	addedSubstrate float64 // g substrate carried by the added volume
	removedVolume  float64 // L leaving the vessel this step
	cellRetention  float64 // fraction of cells kept back from the removed stream
}

// modePolicy is the single capability a mode exposes: the boundary flows for
// the step that starts at s.Time and ends at s.Time+dt. Policies are
// constructed fresh per run; repeated fed-batch keeps a cursor over its
// harvest schedule, the others are stateless.
type modePolicy interface {
	flows(s State, dt float64) stepFlows
}

// newModePolicy builds the flow policy for p.Mode. Params must already be
// validated; the mode switch is exhaustive over ValidModes.
func newModePolicy(p *Params) modePolicy {
	switch p.Mode {
	case FedBatch:
		return &feedPolicy{rate: p.FeedRate, substrate: p.FeedSubstrate}
	case RepeatedFedBatch:
		return &harvestCyclePolicy{
			feedPolicy: feedPolicy{rate: p.FeedRate, substrate: p.FeedSubstrate},
			harvest:    p.HarvestVolume,
			marks:      harvestMarks(p),
		}
	case BleedPerfusion:
		return &perfusionPolicy{
			feedPolicy: feedPolicy{rate: p.FeedRate, substrate: p.FeedSubstrate},
			bleed:      p.BleedRate,
			retention:  p.CellRetention,
		}
	default:
		return batchPolicy{}
	}
}

// batchPolicy: closed vessel. Nothing enters or leaves; growth proceeds until
// the substrate is exhausted and biomass plateaus.
type batchPolicy struct{}

func (batchPolicy) flows(State, float64) stepFlows { return stepFlows{} }

// feedPolicy adds rate*dt liters per step carrying feed substrate, diluting
// everything already in the vessel. Volume only ever increases.
type feedPolicy struct {
	rate      float64 // L/h
	substrate float64 // g/L in the feed stream
}

func (f feedPolicy) flows(_ State, dt float64) stepFlows {
	added := f.rate * dt
	return stepFlows{
		addedVolume:    added,
		addedSubstrate: added * f.substrate,
	}
}

// harvestCyclePolicy feeds like fed-batch and removes a fixed harvest volume
// once per cycle mark. A harvest fires during the step whose end boundary is
// the first to reach the mark, so the schedule is robust to dt not dividing
// the cycle time evenly; several marks landing inside one step each fire once.
// Harvest takes a representative sample: concentrations are unchanged, only
// volume drops.
type harvestCyclePolicy struct {
	feedPolicy
	harvest float64   // L removed per harvest event
	marks   []float64 // cycle boundaries k*cycle_time, ascending
	next    int       // index of the next unfired mark
}

func (h *harvestCyclePolicy) flows(s State, dt float64) stepFlows {
	fl := h.feedPolicy.flows(s, dt)
	end := s.Time + dt
	for h.next < len(h.marks) && h.marks[h.next] <= end+timeTolerance {
		logrus.Debugf("harvest of %.4gL in the step ending %.4gh (cycle mark %.4gh)", h.harvest, end, h.marks[h.next])
		fl.removedVolume += h.harvest
		h.next++
	}
	return fl
}

// harvestMarks returns the cycle boundaries k*cycle_time for k = 1..n-1.
// The final cycle ends with the run, so it never harvests; marks falling
// beyond the quantized horizon are dropped with a warning because the run
// cannot reach them.
func harvestMarks(p *Params) []float64 {
	horizon := float64(p.Steps()) * p.TimeStep
	marks := make([]float64, 0, p.Cycles-1)
	for k := 1; k < p.Cycles; k++ {
		mark := float64(k) * p.CycleTime
		if mark > horizon+timeTolerance {
			logrus.Warnf("harvest schedule truncated: cycle %d mark at %.4gh exceeds the %.4gh horizon", k, mark, horizon)
			break
		}
		marks = append(marks, mark)
	}
	return marks
}

// perfusionPolicy runs continuous feed and bleed streams. Substrate and
// product leave with the bleed at vessel concentration; the retention device
// keeps the configured fraction of cells in the vessel. Volume is steady when
// feed and bleed rates match and drifts otherwise.
type perfusionPolicy struct {
	feedPolicy
	bleed     float64 // L/h out
	retention float64
}

func (pp perfusionPolicy) flows(s State, dt float64) stepFlows {
	fl := pp.feedPolicy.flows(s, dt)
	fl.removedVolume = pp.bleed * dt
	fl.cellRetention = pp.retention
	return fl
}

// timeTolerance absorbs float drift when comparing step boundaries against
// harvest marks (mark values are exact multiples, step ends accumulate dt
// rounding).
const timeTolerance = 1e-9
