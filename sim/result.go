package sim

import "time"

// Result is the complete output bundle of one run: the raw series plus every
// derived view of it. Constructed once by Run and never mutated afterwards;
// independent runs produce independent bundles, which is what makes scenario
// overlay/comparison safe without coordination.
type Result struct {
	RunID    string `json:"run_id"`
	Scenario string `json:"scenario,omitempty"` // label stamped by the scenario layer
	Product  string `json:"product,omitempty"`  // display name for the product trace

	CreatedAt   time.Time `json:"created_at"`
	ComputeTime float64   `json:"compute_time"` // wall clock, seconds

	Params    Params        `json:"params"`
	Series    TimeSeries    `json:"series"`
	Metrics   Metrics       `json:"metrics"`
	Crash     CrashReport   `json:"crash"`
	Stats     SeriesSummary `json:"stats"`
	Anomalies int           `json:"anomalies"` // concentrations clamped to zero during integration
}
