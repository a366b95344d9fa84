// Computes scalar performance metrics from a completed run:
// productivity, totals, yields, and substrate conversion.

package sim

import "fmt"

// Metrics aggregates the performance of one run for final reporting.
// All masses are grams, productivities g/h, yields g/g. Every ratio guards
// its denominator: a zero duration or zero substrate consumption reports the
// metric as 0 instead of failing.
type Metrics struct {
	BiomassProductivity float64 `json:"biomass_productivity"` // g/h
	ProductProductivity float64 `json:"product_productivity"` // g/h
	TotalBiomass        float64 `json:"total_biomass"`        // harvested/bled + final in-vessel, g
	TotalProduct        float64 `json:"total_product"`        // harvested/bled + final in-vessel, g
	BiomassYield        float64 `json:"biomass_yield"`        // total biomass / substrate consumed, g/g
	ProductYield        float64 `json:"product_yield"`        // total product / substrate consumed, g/g
	SubstrateSupplied   float64 `json:"substrate_supplied"`   // initial + fed, g
	SubstrateConsumed   float64 `json:"substrate_consumed"`   // supplied - final in-vessel, g
	SubstrateConversion float64 `json:"substrate_conversion"` // consumed fraction net of substrate bled out unconsumed
	MaxGrowthRate       float64 `json:"max_growth_rate"`      // max mu over the series, 1/h
}

// harvesting reports whether the mode removes culture during the run, which
// switches productivity from in-vessel gain to total recovered mass.
func harvesting(mode Mode) bool {
	return mode == RepeatedFedBatch || mode == BleedPerfusion
}

// ComputeMetrics derives the metrics from a completed series. Pure
// post-processing: the series is not modified, and calling it twice on the
// same series yields identical metrics.
func ComputeMetrics(p *Params, series TimeSeries) Metrics {
	final := series.Final()
	var m Metrics

	m.TotalBiomass = final.HarvestedBiomass + final.Biomass*final.Volume
	m.TotalProduct = final.HarvestedProduct + final.Product*final.Volume

	m.SubstrateSupplied = p.InitialSubstrate*p.InitialVolume + final.FedSubstrate
	m.SubstrateConsumed = m.SubstrateSupplied - final.Substrate*final.Volume

	if final.Time > 0 {
		if harvesting(p.Mode) {
			m.BiomassProductivity = m.TotalBiomass / final.Time
			m.ProductProductivity = m.TotalProduct / final.Time
		} else {
			m.BiomassProductivity = (final.Biomass*final.Volume - p.InitialBiomass*p.InitialVolume) / final.Time
			m.ProductProductivity = final.Product * final.Volume / final.Time
		}
	}
	if m.SubstrateConsumed > 0 {
		m.BiomassYield = m.TotalBiomass / m.SubstrateConsumed
		m.ProductYield = m.TotalProduct / m.SubstrateConsumed
	}
	if m.SubstrateSupplied > 0 {
		// Substrate that left with a harvest or the bleed was diluted out,
		// not consumed, so it does not count toward conversion.
		m.SubstrateConversion = (m.SubstrateConsumed - final.HarvestedSubstrate) / m.SubstrateSupplied
	}
	for _, s := range series {
		if s.GrowthRate > m.MaxGrowthRate {
			m.MaxGrowthRate = s.GrowthRate
		}
	}
	return m
}

// Print displays the metrics at the end of a run.
func (m *Metrics) Print(product string) {
	if product == "" {
		product = "Product"
	}
	fmt.Println("=== Process Metrics ===")
	fmt.Printf("Biomass Productivity  : %.4f g/h\n", m.BiomassProductivity)
	fmt.Printf("%-21s : %.4f g/h\n", product+" Productivity", m.ProductProductivity)
	fmt.Printf("Total Biomass Produced: %.4f g\n", m.TotalBiomass)
	fmt.Printf("Total %s Produced: %.4f g\n", product, m.TotalProduct)
	fmt.Printf("Biomass Yield         : %.4f g/g\n", m.BiomassYield)
	fmt.Printf("%-21s : %.4f g/g\n", product+" Yield", m.ProductYield)
	fmt.Printf("Substrate Consumed    : %.4f g of %.4f g supplied\n", m.SubstrateConsumed, m.SubstrateSupplied)
	fmt.Printf("Substrate Conversion  : %.2f%%\n", m.SubstrateConversion*100)
	fmt.Printf("Max Growth Rate       : %.4f 1/h\n", m.MaxGrowthRate)
}
