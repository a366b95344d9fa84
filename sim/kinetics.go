package sim

// Monod growth kinetics with growth-associated product formation. All
// functions here are pure: no state, no randomness, identical inputs give
// identical outputs. Division guards (Ks > 0, Yxs > 0) are enforced once by
// Params.Validate, not per call.

// GrowthRate returns the specific growth rate mu = mu_max * S / (Ks + S).
// mu is exactly 0 when S <= 0: an exhausted substrate stops growth rather
// than producing a negative or undefined rate.
func GrowthRate(p *Params, substrate float64) float64 {
	if substrate <= 0 {
		return 0
	}
	return p.MuMax * substrate / (p.Ks + substrate)
}

// bioRates holds the instantaneous biological rates at one state point,
// expressed per liter of culture (g/L/h).
type bioRates struct {
	Mu          float64 // specific growth rate, 1/h
	Growth      float64 // dX/dt = mu * X
	Consumption float64 // dS/dt magnitude = mu * X / Yxs
	Production  float64 // dP/dt = Yxp * mu * X
}

// kinetics evaluates the Monod model at the given substrate and biomass
// concentrations.
func kinetics(p *Params, substrate, biomass float64) bioRates {
	mu := GrowthRate(p, substrate)
	growth := mu * biomass
	return bioRates{
		Mu:          mu,
		Growth:      growth,
		Consumption: growth / p.Yxs,
		Production:  p.Yxp * growth,
	}
}
