package export

import (
	"fmt"
	"os"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/mostinn/bioprocessing-app/sim"
)

// Palette cycled by comparison charts. Overlaid runs beyond the first are
// drawn dashed, matching the compare view's convention.
var palette = []drawing.Color{
	chart.ColorBlue,
	chart.ColorRed,
	chart.ColorGreen,
	chart.ColorOrange,
	chart.ColorCyan,
	chart.ColorBlack,
}

const (
	chartWidth  = 1024
	chartHeight = 640
)

func times(series sim.TimeSeries) []float64 {
	xs := make([]float64, len(series))
	for i, s := range series {
		xs[i] = s.Time
	}
	return xs
}

func values(series sim.TimeSeries, f func(sim.State) float64) []float64 {
	ys := make([]float64, len(series))
	for i, s := range series {
		ys[i] = f(s)
	}
	return ys
}

// RenderSeriesChart draws substrate, biomass, and product concentration
// traces for one run, with volume on the secondary axis, and writes a PNG.
func RenderSeriesChart(path string, res *sim.Result) error {
	if len(res.Series) < 2 {
		return fmt.Errorf("chart needs at least two samples, run has %d", len(res.Series))
	}
	x := times(res.Series)
	product := res.Product
	if product == "" {
		product = "Product"
	}
	title := res.Scenario
	if title == "" {
		title = string(res.Params.Mode)
	}

	graph := chart.Chart{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "Time (h)"},
		YAxis:  chart.YAxis{Name: "Concentration (g/L)"},
		YAxisSecondary: chart.YAxis{
			Name: "Volume (L)",
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Substrate",
				XValues: x,
				YValues: values(res.Series, func(s sim.State) float64 { return s.Substrate }),
				Style:   chart.Style{StrokeColor: chart.ColorBlue, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Biomass",
				XValues: x,
				YValues: values(res.Series, func(s sim.State) float64 { return s.Biomass }),
				Style:   chart.Style{StrokeColor: chart.ColorGreen, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    product,
				XValues: x,
				YValues: values(res.Series, func(s sim.State) float64 { return s.Product }),
				Style:   chart.Style{StrokeColor: chart.ColorRed, StrokeWidth: 2.0},
			},
			chart.ContinuousSeries{
				Name:    "Volume",
				YAxis:   chart.YAxisSecondary,
				XValues: x,
				YValues: values(res.Series, func(s sim.State) float64 { return s.Volume }),
				Style:   chart.Style{StrokeColor: chart.ColorLightGray, StrokeWidth: 2.0},
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, &graph)
}

// RenderComparisonChart overlays the biomass traces of several runs, one
// color per run, named by scenario. Runs after the first are dashed.
func RenderComparisonChart(path string, results []*sim.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("comparison chart needs at least one run")
	}
	series := make([]chart.Series, 0, len(results))
	for i, res := range results {
		if len(res.Series) < 2 {
			return fmt.Errorf("chart needs at least two samples, run %s has %d", res.RunID, len(res.Series))
		}
		name := res.Scenario
		if name == "" {
			name = fmt.Sprintf("run %d", i+1)
		}
		style := chart.Style{
			StrokeColor: palette[i%len(palette)],
			StrokeWidth: 2.0,
		}
		if i > 0 {
			style.StrokeDashArray = []float64{5.0, 5.0}
		}
		series = append(series, chart.ContinuousSeries{
			Name:    name,
			XValues: times(res.Series),
			YValues: values(res.Series, func(s sim.State) float64 { return s.Biomass }),
			Style:   style,
		})
	}

	graph := chart.Chart{
		Title:  "Biomass comparison",
		Width:  chartWidth,
		Height: chartHeight,
		XAxis:  chart.XAxis{Name: "Time (h)"},
		YAxis:  chart.YAxis{Name: "Biomass (g/L)"},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	return renderPNG(path, &graph)
}

func renderPNG(path string, graph *chart.Chart) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}
	defer func() { _ = file.Close() }()

	if err := graph.Render(chart.PNG, file); err != nil {
		return fmt.Errorf("rendering chart: %w", err)
	}
	return nil
}
