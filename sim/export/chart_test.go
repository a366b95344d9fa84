package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/mostinn/bioprocessing-app/sim"
)

func decodePNG(t *testing.T, path string) (int, int) {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	cfg, err := png.DecodeConfig(file)
	if err != nil {
		t.Fatalf("%s is not a PNG: %v", path, err)
	}
	return cfg.Width, cfg.Height
}

func TestRenderSeriesChart_WritesPNG(t *testing.T) {
	res := smallRun(t)
	path := filepath.Join(t.TempDir(), "run.png")
	if err := RenderSeriesChart(path, res); err != nil {
		t.Fatalf("render: %v", err)
	}

	w, h := decodePNG(t, path)
	if w != chartWidth || h != chartHeight {
		t.Errorf("chart size = %dx%d, want %dx%d", w, h, chartWidth, chartHeight)
	}
}

func TestRenderSeriesChart_TooFewSamples_ReturnsError(t *testing.T) {
	res := &sim.Result{Series: sim.TimeSeries{{Time: 0}}}
	path := filepath.Join(t.TempDir(), "short.png")
	if err := RenderSeriesChart(path, res); err == nil {
		t.Fatal("expected error for single-sample series, got nil")
	}
}

func TestRenderComparisonChart_OverlaysRuns(t *testing.T) {
	a, b := smallRun(t), smallRun(t)
	a.Scenario = "baseline"
	b.Scenario = "variant"

	path := filepath.Join(t.TempDir(), "compare.png")
	if err := RenderComparisonChart(path, []*sim.Result{a, b}); err != nil {
		t.Fatalf("render: %v", err)
	}

	if w, h := decodePNG(t, path); w == 0 || h == 0 {
		t.Error("empty comparison chart")
	}
}

func TestRenderComparisonChart_NoRuns_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.png")
	if err := RenderComparisonChart(path, nil); err == nil {
		t.Fatal("expected error for empty run list, got nil")
	}
}
