package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mostinn/bioprocessing-app/sim"
)

func smallRun(t *testing.T) *sim.Result {
	t.Helper()
	p := sim.Params{
		Mode:             sim.Batch,
		InitialSubstrate: 10,
		InitialBiomass:   0.1,
		InitialVolume:    1,
		MuMax:            0.3,
		Ks:               0.5,
		Yxs:              0.5,
		Yxp:              0.2,
		Product:          "Ethanol",
		Duration:         2,
		TimeStep:         0.5,
	}
	res, err := sim.Run(p)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return res
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatalf("parsing %s: %v", path, err)
	}
	return rows
}

func TestWriteSeriesCSV_ShapeAndValues(t *testing.T) {
	res := smallRun(t)
	path := filepath.Join(t.TempDir(), "series.csv")
	if err := WriteSeriesCSV(path, res); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != len(res.Series)+1 {
		t.Fatalf("row count = %d, want %d (header + one per sample)", len(rows), len(res.Series)+1)
	}
	header := rows[0]
	if header[0] != "time_h" || header[4] != "ethanol_g_l" {
		t.Errorf("unexpected header: %v", header)
	}
	if len(header) != 11 {
		t.Errorf("column count = %d, want 11", len(header))
	}

	for i, row := range rows[1:] {
		if len(row) != len(header) {
			t.Fatalf("row %d has %d fields, want %d", i, len(row), len(header))
		}
		for j, field := range row {
			if _, err := strconv.ParseFloat(field, 64); err != nil {
				t.Fatalf("row %d column %s: %q is not a number", i, header[j], field)
			}
		}
	}

	// First sample is the initial state.
	if rows[1][0] != "0" {
		t.Errorf("first time = %q, want 0", rows[1][0])
	}
	if s, _ := strconv.ParseFloat(rows[1][1], 64); s != 10 {
		t.Errorf("first substrate = %v, want 10", s)
	}
}

func TestProductColumn(t *testing.T) {
	cases := map[string]string{
		"Monoclonal Antibody": "monoclonal_antibody_g_l",
		"Ethanol":             "ethanol_g_l",
		"":                    "product_g_l",
		"  ":                  "product_g_l",
	}
	for product, want := range cases {
		if got := productColumn(product); got != want {
			t.Errorf("productColumn(%q) = %q, want %q", product, got, want)
		}
	}
}

func TestWriteMetricsCSV_OneRowPerRun(t *testing.T) {
	a, b := smallRun(t), smallRun(t)
	b.Scenario = "second"

	path := filepath.Join(t.TempDir(), "metrics.csv")
	if err := WriteMetricsCSV(path, a, b); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readCSV(t, path)
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2 runs", len(rows))
	}
	if len(rows[0]) != len(metricsColumns) {
		t.Errorf("header has %d columns, want %d", len(rows[0]), len(metricsColumns))
	}
	if rows[1][0] != a.RunID || rows[2][0] != b.RunID {
		t.Errorf("run ids out of order: %q, %q", rows[1][0], rows[2][0])
	}
	if rows[2][1] != "second" {
		t.Errorf("scenario column = %q, want %q", rows[2][1], "second")
	}
	if rows[1][2] != "batch" {
		t.Errorf("mode column = %q, want batch", rows[1][2])
	}
	if rows[1][16] != "false" {
		t.Errorf("crashed column = %q, want false", rows[1][16])
	}
}
