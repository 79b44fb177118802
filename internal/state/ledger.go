package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tbeckett/grammarsmith/pkg/models"
)

// Run is one recorded generation run.
type Run struct {
	ID           string        `json:"id"`
	ManifestPath string        `json:"manifest_path"`
	LanguageID   string        `json:"language_id"`
	PoolSize     int           `json:"pool_size"`
	Waves        int           `json:"waves"`
	TasksTotal   int           `json:"tasks_total"`
	TasksFailed  int           `json:"tasks_failed"`
	StartedAt    time.Time     `json:"started_at"`
	Duration     time.Duration `json:"duration"`
}

// TaskRecord is one task outcome within a run.
type TaskRecord struct {
	RunID       string        `json:"run_id"`
	TaskID      string        `json:"task_id"`
	OK          bool          `json:"ok"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	MemoryBytes uint64        `json:"memory_bytes"`
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.New().String()
}

// RecordRun persists a run and its task results in one transaction.
func (db *DB) RecordRun(run *Run, results []*models.TaskResult) error {
	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO runs (id, manifest_path, language_id, pool_size, waves, tasks_total, tasks_failed, started_at, duration_ms)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, run.ID, run.ManifestPath, run.LanguageID, run.PoolSize, run.Waves,
			run.TasksTotal, run.TasksFailed, formatTime(run.StartedAt), run.Duration.Milliseconds())
		if err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, res := range results {
			errText := ""
			if res.Err != nil {
				errText = res.Err.Error()
			}
			_, err := tx.Exec(`
				INSERT INTO task_results (run_id, task_id, ok, error, duration_ms, memory_bytes)
				VALUES (?, ?, ?, ?, ?, ?)
			`, run.ID, res.TaskID, res.OK(), errText, res.Duration.Milliseconds(), res.MemoryBytes)
			if err != nil {
				return fmt.Errorf("insert task result %s: %w", res.TaskID, err)
			}
		}
		return nil
	})
}

// GetRun retrieves a run by ID. Returns nil without error when the run
// does not exist.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, manifest_path, language_id, pool_size, waves, tasks_total, tasks_failed, started_at, duration_ms
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the most recent runs, newest first.
func (db *DB) RecentRuns(limit int) ([]*Run, error) {
	rows, err := db.Query(`
		SELECT id, manifest_path, language_id, pool_size, waves, tasks_total, tasks_failed, started_at, duration_ms
		FROM runs ORDER BY started_at DESC, id LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunTasks returns the task records of one run.
func (db *DB) RunTasks(runID string) ([]*TaskRecord, error) {
	rows, err := db.Query(`
		SELECT run_id, task_id, ok, error, duration_ms, memory_bytes
		FROM task_results WHERE run_id = ? ORDER BY task_id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query task results: %w", err)
	}
	defer rows.Close()

	var records []*TaskRecord
	for rows.Next() {
		var r TaskRecord
		var durationMS int64
		if err := rows.Scan(&r.RunID, &r.TaskID, &r.OK, &r.Error, &durationMS, &r.MemoryBytes); err != nil {
			return nil, fmt.Errorf("scan task result: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, &r)
	}
	return records, rows.Err()
}

// scanner covers both sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var startedAt string
	var durationMS int64
	err := s.Scan(&run.ID, &run.ManifestPath, &run.LanguageID, &run.PoolSize,
		&run.Waves, &run.TasksTotal, &run.TasksFailed, &startedAt, &durationMS)
	if err != nil {
		return nil, err
	}
	run.StartedAt, _ = parseTime(startedAt)
	run.Duration = time.Duration(durationMS) * time.Millisecond
	return &run, nil
}
