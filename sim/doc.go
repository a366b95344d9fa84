// Package sim provides the core bioprocess simulation engine: a fixed-step
// mass-balance integrator for microbial and cell culture growth under four
// bioreactor operating modes, with crash detection and performance metrics.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - params.go: Params (one immutable parameter set per run), modes, validation
//   - integrator.go: the forward-Euler step loop, dilution accounting, Run()
//   - policy.go: per-mode feed/harvest/bleed flows applied at each step boundary
//
// Then the post-processing stages, each a pure function of the finished series:
//   - crash.go: washout detection and the biomass inflection point
//   - metrics.go: productivity, yield, and conversion metrics
//   - stats.go: per-variable summary statistics
//
// # Architecture
//
// The sim package is the computational core; collaborators live in
// sub-packages:
//   - sim/scenario/: named presets and scenario file load/save
//   - sim/export/: CSV and PNG chart rendering of result bundles
//   - sim/history/: SQLite archive of completed runs
//
// A run is single-threaded and deterministic: identical Params produce an
// identical Result. Independent runs share no state, so callers may execute
// scenario comparisons in parallel goroutines.
package sim
