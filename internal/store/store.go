// Package store persists analysis snapshots in SQLite so a run can be
// reloaded or compared later without re-parsing the source files.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/i2sales/insights/internal/metrics"
)

const createSnapshotsTableSQL = `
CREATE TABLE IF NOT EXISTS analysis_snapshots (
	run_id TEXT PRIMARY KEY,
	created_at_utc TEXT NOT NULL,
	source_dir TEXT NOT NULL,
	mode TEXT NOT NULL,
	agent_count INTEGER NOT NULL,
	result_json TEXT NOT NULL
)`

const createAgentKpisTableSQL = `
CREATE TABLE IF NOT EXISTS agent_kpis (
	run_id TEXT NOT NULL,
	agent TEXT NOT NULL,
	label TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (run_id, agent, label)
)`

var createSnapshotsIndexesSQL = []string{
	`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON analysis_snapshots(created_at_utc)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_mode ON analysis_snapshots(mode)`,
	`CREATE INDEX IF NOT EXISTS idx_agent_kpis_agent ON agent_kpis(agent)`,
}

const insertSnapshotSQL = `
INSERT INTO analysis_snapshots (
	run_id,
	created_at_utc,
	source_dir,
	mode,
	agent_count,
	result_json
) VALUES (?, ?, ?, ?, ?, ?)`

const insertAgentKpiSQL = `
INSERT INTO agent_kpis (run_id, agent, label, value) VALUES (?, ?, ?, ?)`

const selectAgentKpisSQL = `
SELECT agent, label, value FROM agent_kpis WHERE run_id = ? ORDER BY agent, label`

const selectSnapshotSQL = `
SELECT run_id, created_at_utc, source_dir, mode, agent_count, result_json
FROM analysis_snapshots
WHERE run_id = ?`

const selectLatestSnapshotSQL = `
SELECT run_id, created_at_utc, source_dir, mode, agent_count, result_json
FROM analysis_snapshots
ORDER BY created_at_utc DESC, run_id DESC
LIMIT 1`

const listSnapshotsSQL = `
SELECT run_id, created_at_utc, source_dir, mode, agent_count
FROM analysis_snapshots
ORDER BY created_at_utc DESC, run_id DESC`

// ErrSnapshotNotFound reports a lookup for an absent run.
var ErrSnapshotNotFound = errors.New("analysis snapshot not found")

// Snapshot is one stored analysis run. Result is nil on list queries.
type Snapshot struct {
	RunID      string
	CreatedAt  time.Time
	SourceDir  string
	Mode       metrics.Mode
	AgentCount int
	Result     *metrics.AnalysisResult
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating parent directories as needed) and migrates the
// snapshot database.
func Open(dbPath string) (*Store, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	if _, err := db.Exec(createSnapshotsTableSQL); err != nil {
		return fmt.Errorf("create snapshots table: %w", err)
	}
	if _, err := db.Exec(createAgentKpisTableSQL); err != nil {
		return fmt.Errorf("create agent kpis table: %w", err)
	}
	for _, stmt := range createSnapshotsIndexesSQL {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create snapshots index: %w", err)
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveSnapshot persists one analysis run and returns its generated id.
func (s *Store) SaveSnapshot(ctx context.Context, sourceDir string, mode metrics.Mode, result metrics.AnalysisResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal analysis result: %w", err)
	}

	runID := uuid.NewString()
	createdAt := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertSnapshotSQL,
		runID,
		createdAt,
		sourceDir,
		string(mode),
		len(result.AgentNames),
		string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}

	// Headline KPIs are denormalized per agent so they stay queryable
	// without unpacking the JSON payload.
	for _, agent := range result.AgentNames {
		individual, ok := result.IndividualMetrics[agent]
		if !ok {
			continue
		}
		for _, kpi := range individual.Kpis {
			if _, err := tx.ExecContext(ctx, insertAgentKpiSQL, runID, agent, kpi.Label, kpi.Value); err != nil {
				return "", fmt.Errorf("insert agent kpi: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit snapshot: %w", err)
	}
	return runID, nil
}

// AgentKpi is one denormalized headline value of a stored run.
type AgentKpi struct {
	Agent string
	Label string
	Value string
}

// AgentKpis lists the stored per-agent KPI rows of one run.
func (s *Store) AgentKpis(ctx context.Context, runID string) ([]AgentKpi, error) {
	rows, err := s.db.QueryContext(ctx, selectAgentKpisSQL, runID)
	if err != nil {
		return nil, fmt.Errorf("query agent kpis: %w", err)
	}
	defer rows.Close()

	var kpis []AgentKpi
	for rows.Next() {
		var kpi AgentKpi
		if err := rows.Scan(&kpi.Agent, &kpi.Label, &kpi.Value); err != nil {
			return nil, fmt.Errorf("scan agent kpi: %w", err)
		}
		kpis = append(kpis, kpi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent kpis: %w", err)
	}
	return kpis, nil
}

// LoadSnapshot fetches one run by id, including the full result.
func (s *Store) LoadSnapshot(ctx context.Context, runID string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, selectSnapshotSQL, runID)
	return scanSnapshot(row)
}

// LoadLatest fetches the most recent run, including the full result.
func (s *Store) LoadLatest(ctx context.Context) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx, selectLatestSnapshotSQL)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (Snapshot, error) {
	var (
		snapshot   Snapshot
		createdAt  string
		mode       string
		resultJSON string
	)
	err := row.Scan(&snapshot.RunID, &createdAt, &snapshot.SourceDir, &mode, &snapshot.AgentCount, &resultJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrSnapshotNotFound
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	snapshot.Mode = metrics.Mode(mode)
	snapshot.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	var result metrics.AnalysisResult
	if err := json.Unmarshal([]byte(resultJSON), &result); err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot result: %w", err)
	}
	snapshot.Result = &result
	return snapshot, nil
}

// ListSnapshots returns run metadata newest first, without results.
func (s *Store) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, listSnapshotsSQL)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var (
			snapshot  Snapshot
			createdAt string
			mode      string
		)
		if err := rows.Scan(&snapshot.RunID, &createdAt, &snapshot.SourceDir, &mode, &snapshot.AgentCount); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		snapshot.Mode = metrics.Mode(mode)
		snapshot.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse snapshot timestamp: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return snapshots, nil
}
