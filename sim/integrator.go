package sim

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Run executes one complete simulation: validate, integrate, post-process.
// It either fails fast with an error wrapping ErrInvalidConfig or returns a
// fully populated Result; there is no partial completion. Runs are
// single-threaded and deterministic, and independent Params may be run
// concurrently because no state is shared between runs.
func Run(p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	steps := p.Steps()
	logrus.Infof("starting %s run: %d steps of %.4gh (%.4gh horizon)", p.Mode, steps, p.TimeStep, float64(steps)*p.TimeStep)

	series, anomalies := integrate(&p, newModePolicy(&p))

	crash := DetectCrash(series, DefaultCrashThresholds())
	if crash.Crashed {
		logrus.Warnf("culture crash detected at t=%.4gh (peak biomass %.4g g/L at t=%.4gh)",
			crash.CrashTime, crash.PeakBiomass, crash.InflectionTime)
	}
	if anomalies > 0 {
		logrus.Warnf("%d numerical anomalies clamped during the run; consider a smaller time_step", anomalies)
	}

	res := &Result{
		RunID:       uuid.NewString(),
		Product:     p.Product,
		CreatedAt:   time.Now().UTC(),
		Params:      p,
		Series:      series,
		Metrics:     ComputeMetrics(&p, series),
		Crash:       crash,
		Stats:       Summarize(series),
		Anomalies:   anomalies,
		ComputeTime: time.Since(start).Seconds(),
	}
	logrus.Infof("run %s complete: %d points, final biomass %.4g g/L", res.RunID, len(series), series.Final().Biomass)
	return res, nil
}

// integrate marches the state forward with explicit (forward Euler) steps.
// Per step: biological rates at the current state are converted to mass
// changes over dt, the mode policy contributes boundary flows, volume is
// updated first, and each concentration is recomputed as
//
//	(old concentration*old V + biological mass change - removed mass + added mass) / new V
//
// so feeding dilutes and representative removal leaves concentrations
// untouched. Concentrations that would go negative (large dt relative to
// mu_max) are clamped to zero and counted as anomalies rather than
// propagated. Returns the full series and the anomaly count.
func integrate(p *Params, policy modePolicy) (TimeSeries, int) {
	steps := p.Steps()
	series := make(TimeSeries, 0, steps+1)
	series = append(series, State{
		Substrate:  p.InitialSubstrate,
		Biomass:    p.InitialBiomass,
		Volume:     p.InitialVolume,
		GrowthRate: GrowthRate(p, p.InitialSubstrate),
	})

	anomalies := 0
	for i := 1; i <= steps; i++ {
		cur := series[i-1]
		rates := kinetics(p, cur.Substrate, cur.Biomass)
		held := cur.Volume * p.TimeStep // converts g/L/h rates to g over the step

		fl := policy.flows(cur, p.TimeStep)
		removed := fl.removedVolume
		if available := cur.Volume + fl.addedVolume; removed > available {
			// Cannot drain more liquid than the vessel holds.
			logrus.Debugf("step %d: removal %.4gL capped at available %.4gL", i, removed, available)
			removed = available
			anomalies++
		}
		next := State{
			Time:               float64(i) * p.TimeStep,
			Volume:             cur.Volume + fl.addedVolume - removed,
			FedSubstrate:       cur.FedSubstrate + fl.addedSubstrate,
			HarvestedBiomass:   cur.HarvestedBiomass + (1-fl.cellRetention)*removed*cur.Biomass,
			HarvestedProduct:   cur.HarvestedProduct + removed*cur.Product,
			HarvestedSubstrate: cur.HarvestedSubstrate + removed*cur.Substrate,
			HarvestedVolume:    cur.HarvestedVolume + removed,
		}
		if next.Volume > 0 {
			next.Substrate = (cur.Substrate*cur.Volume - rates.Consumption*held - removed*cur.Substrate + fl.addedSubstrate) / next.Volume
			next.Biomass = (cur.Biomass*cur.Volume + rates.Growth*held - (1-fl.cellRetention)*removed*cur.Biomass) / next.Volume
			next.Product = (cur.Product*cur.Volume + rates.Production*held - removed*cur.Product) / next.Volume
		}
		anomalies += clampNegatives(i, &next)
		next.GrowthRate = GrowthRate(p, next.Substrate)
		series = append(series, next)
	}
	return series, anomalies
}

// clampNegatives zeroes any concentration the Euler step drove below zero and
// returns how many were clamped. Biological quantities cannot be negative;
// the clamp absorbs the step-size artifact locally instead of poisoning the
// rest of the series.
func clampNegatives(step int, s *State) int {
	clamped := 0
	if s.Substrate < 0 {
		logrus.Debugf("step %d: substrate %.4g clamped to 0", step, s.Substrate)
		s.Substrate = 0
		clamped++
	}
	if s.Biomass < 0 {
		logrus.Debugf("step %d: biomass %.4g clamped to 0", step, s.Biomass)
		s.Biomass = 0
		clamped++
	}
	if s.Product < 0 {
		logrus.Debugf("step %d: product %.4g clamped to 0", step, s.Product)
		s.Product = 0
		clamped++
	}
	return clamped
}
