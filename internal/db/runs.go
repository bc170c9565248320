package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/brand-studio/internal/runstate"
)

// -----------------------------------------------------------------------------
// Pipeline Run Methods
// -----------------------------------------------------------------------------

const runColumns = `id, kind, company_id, status, failure_kind, error, steps, created_at, completed_at`

// RecordRun stores the final state of a run, replacing an earlier record
// with the same ID.
func (db *DB) RecordRun(ctx context.Context, run *runstate.Run) error {
	stepsJSON, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("failed to marshal run steps: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (id, kind, company_id, status, failure_kind, error, steps, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (id) DO UPDATE
		   SET status = EXCLUDED.status,
		       failure_kind = EXCLUDED.failure_kind,
		       error = EXCLUDED.error,
		       steps = EXCLUDED.steps,
		       completed_at = EXCLUDED.completed_at`,
		run.ID, run.Kind, nullIfZero(run.CompanyID), run.Status,
		nullIfEmpty(run.FailureKind), nullIfEmpty(run.Error), stepsJSON, run.CreatedAt, run.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", run.ID, err)
	}
	return nil
}

// GetRunRecord retrieves a stored run, returning nil when it does not exist.
func (db *DB) GetRunRecord(ctx context.Context, id string) (*RunRecord, error) {
	row := db.pool.QueryRow(ctx, `SELECT `+runColumns+` FROM pipeline_runs WHERE id = $1`, id)
	r, err := scanRun(row)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return r, nil
}

// ListRunRecords returns the most recent runs of a company.
func (db *DB) ListRunRecords(ctx context.Context, companyID int64, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.pool.Query(ctx,
		`SELECT `+runColumns+` FROM pipeline_runs
		 WHERE company_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		companyID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []RunRecord{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

func scanRun(row rowScanner) (*RunRecord, error) {
	var (
		r         RunRecord
		stepsJSON []byte
	)
	if err := row.Scan(&r.ID, &r.Kind, &r.CompanyID, &r.Status, &r.FailureKind, &r.Error,
		&stepsJSON, &r.CreatedAt, &r.CompletedAt); err != nil {
		return nil, err
	}
	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &r.Steps); err != nil {
			return nil, fmt.Errorf("failed to decode run steps: %w", err)
		}
	}
	return &r, nil
}
