package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RunStatus is the lifecycle state of a pipeline run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// Run is one row of sync_runs.
type Run struct {
	ID           string
	Status       RunStatus
	StartedAt    time.Time
	FinishedAt   time.Time
	Records      int
	Inserts      int
	Updates      int
	Deletes      int
	ErrorStage   string
	ErrorMessage string
}

// BeginRun records the start of a run.
func (s *Store) BeginRun(ctx context.Context, runID string) error {
	if err := s.execWithRetry(ctx,
		"INSERT INTO sync_runs (run_id, status, started_at) VALUES (?, ?, ?)",
		runID, string(RunRunning), s.timestamp()); err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run started with BeginRun.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	if err := s.execWithRetry(ctx, `UPDATE sync_runs
		SET status = ?, finished_at = ?, records = ?, inserts = ?, updates = ?, deletes = ?, error_stage = ?, error_message = ?
		WHERE run_id = ?`,
		string(run.Status), s.timestamp(), run.Records, run.Inserts, run.Updates, run.Deletes,
		nullableString(run.ErrorStage), nullableString(run.ErrorMessage), run.ID); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// LastRun returns the most recently started run, or nil when none exists.
func (s *Store) LastRun(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT run_id, status, started_at, finished_at, records, inserts, updates, deletes, error_stage, error_message
		FROM sync_runs ORDER BY started_at DESC, rowid DESC LIMIT 1`)
	var (
		run          Run
		status       string
		startedRaw   string
		finishedRaw  sql.NullString
		errorStage   sql.NullString
		errorMessage sql.NullString
	)
	err := row.Scan(&run.ID, &status, &startedRaw, &finishedRaw, &run.Records, &run.Inserts, &run.Updates, &run.Deletes, &errorStage, &errorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last run: %w", err)
	}
	run.Status = RunStatus(status)
	run.ErrorStage = errorStage.String
	run.ErrorMessage = errorMessage.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		run.FinishedAt = finished
	}
	return &run, nil
}
