package sim

// Culture crash (washout) detection. Relevant mainly for bleed-perfusion,
// where a bleed rate exceeding the net growth rate slowly empties the vessel
// of cells, but the scan runs on every mode's series.

// CrashThresholds tunes the washout detector. A culture must first establish
// (biomass at or above Establish) before a later drop to Collapse or below
// counts as a crash; series that never establish, or establish and never
// collapse, are not crashes.
type CrashThresholds struct {
	Establish float64 // g/L a culture must reach to count as established
	Collapse  float64 // g/L at or below which an established culture has washed out
}

// DefaultCrashThresholds returns the standard detector tuning.
func DefaultCrashThresholds() CrashThresholds {
	return CrashThresholds{Establish: 0.1, Collapse: 0.01}
}

// CrashReport is the detector's verdict plus the biomass inflection point
// (index and time of peak biomass, first occurrence on ties), reported for
// chart annotation whether or not the culture crashed.
type CrashReport struct {
	Crashed    bool    `json:"crashed"`
	CrashIndex int     `json:"crash_index,omitempty"` // step index of the first collapsed sample
	CrashTime  float64 `json:"crash_time,omitempty"`  // h

	InflectionIndex int     `json:"inflection_index"` // step index of peak biomass
	InflectionTime  float64 `json:"inflection_time"`  // h
	PeakBiomass     float64 `json:"peak_biomass"`     // g/L
}

// DetectCrash scans a completed series. Pure: the series is not modified and
// repeated calls return identical reports.
func DetectCrash(series TimeSeries, th CrashThresholds) CrashReport {
	var report CrashReport
	established := false
	for i, s := range series {
		if s.Biomass > report.PeakBiomass {
			report.PeakBiomass = s.Biomass
			report.InflectionIndex = i
			report.InflectionTime = s.Time
		}
		if !established && s.Biomass >= th.Establish {
			established = true
			continue
		}
		if established && !report.Crashed && s.Biomass <= th.Collapse {
			report.Crashed = true
			report.CrashIndex = i
			report.CrashTime = s.Time
		}
	}
	return report
}
