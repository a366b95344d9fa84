// Package history archives completed runs in SQLite so past results can be
// listed and inspected without re-running them. A run is reproducible from
// its archived parameters, so the archive stores params and metrics, not the
// full series.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mostinn/bioprocessing-app/sim"
)

// ErrNotFound is returned when a run id is not in the archive.
var ErrNotFound = errors.New("history: run not found")

// Record is one archived run.
type Record struct {
	RunID     string
	Scenario  string
	Mode      sim.Mode
	Product   string
	CreatedAt time.Time
	Duration  float64 // h
	Steps     int
	Crashed   bool
	CrashTime float64 // h
	Anomalies int

	FinalBiomass float64 // g/L
	FinalProduct float64 // g/L
	FinalVolume  float64 // L

	Params  sim.Params
	Metrics sim.Metrics
}

// Store persists completed runs in a SQLite database.
type Store struct {
	db *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens the archive at path, creating it and its schema as needed.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("archive path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return store, nil
}

// migrate creates the schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		scenario TEXT NOT NULL DEFAULT '',
		mode TEXT NOT NULL,
		product TEXT NOT NULL DEFAULT '',
		duration_h REAL NOT NULL,
		steps INTEGER NOT NULL,
		crashed INTEGER NOT NULL DEFAULT 0,
		crash_time_h REAL NOT NULL DEFAULT 0,
		anomalies INTEGER NOT NULL DEFAULT 0,
		final_biomass REAL NOT NULL,
		final_product REAL NOT NULL,
		final_volume REAL NOT NULL,
		params TEXT NOT NULL,
		metrics TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRun archives one completed run.
func (s *Store) SaveRun(ctx context.Context, res *sim.Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return fmt.Errorf("archive is not open")
	}
	params, err := json.Marshal(res.Params)
	if err != nil {
		return fmt.Errorf("encoding params: %w", err)
	}
	metrics, err := json.Marshal(res.Metrics)
	if err != nil {
		return fmt.Errorf("encoding metrics: %w", err)
	}
	final := res.Series.Final()

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
		   run_id, created_at, scenario, mode, product,
		   duration_h, steps, crashed, crash_time_h, anomalies,
		   final_biomass, final_product, final_volume,
		   params, metrics
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.RunID,
		toMillis(res.CreatedAt),
		res.Scenario,
		string(res.Params.Mode),
		res.Product,
		res.Params.Duration,
		res.Params.Steps(),
		res.Crash.Crashed,
		res.Crash.CrashTime,
		res.Anomalies,
		final.Biomass,
		final.Product,
		final.Volume,
		string(params),
		string(metrics),
	)
	if err != nil {
		return fmt.Errorf("archive run %s: %w", res.RunID, err)
	}
	return nil
}

const recordColumns = `run_id, created_at, scenario, mode, product,
       duration_h, steps, crashed, crash_time_h, anomalies,
       final_biomass, final_product, final_volume, params, metrics`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (Record, error) {
	var rec Record
	var mode string
	var createdAt int64
	var params, metrics string
	if err := row.Scan(
		&rec.RunID,
		&createdAt,
		&rec.Scenario,
		&mode,
		&rec.Product,
		&rec.Duration,
		&rec.Steps,
		&rec.Crashed,
		&rec.CrashTime,
		&rec.Anomalies,
		&rec.FinalBiomass,
		&rec.FinalProduct,
		&rec.FinalVolume,
		&params,
		&metrics,
	); err != nil {
		return Record{}, err
	}
	rec.Mode = sim.Mode(mode)
	rec.CreatedAt = fromMillis(createdAt)
	if err := json.Unmarshal([]byte(params), &rec.Params); err != nil {
		return Record{}, fmt.Errorf("decoding params for run %s: %w", rec.RunID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &rec.Metrics); err != nil {
		return Record{}, fmt.Errorf("decoding metrics for run %s: %w", rec.RunID, err)
	}
	return rec, nil
}

// ListRuns returns up to limit archived runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("archive is not open")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+recordColumns+`
		   FROM runs
		  ORDER BY created_at DESC, run_id
		  LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return records, nil
}

// GetRun returns one archived run by id.
func (s *Store) GetRun(ctx context.Context, runID string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	if s == nil || s.db == nil {
		return Record{}, fmt.Errorf("archive is not open")
	}
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return Record{}, fmt.Errorf("run id is required")
	}

	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+recordColumns+`
		   FROM runs
		  WHERE run_id = ?`,
		runID,
	)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	return rec, nil
}
