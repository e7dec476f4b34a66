package store

import (
	"context"
)

const createInsightRunSQL = `
INSERT INTO insight_runs (public_id, project_id)
VALUES ($1, $2)
RETURNING id, public_id, project_id, status, error, started_at, finished_at, created_at, updated_at;
`

func (q *Queries) CreateInsightRun(ctx context.Context, publicID string, projectID int64) (InsightRun, error) {
	return scanInsightRun(q.db.QueryRow(ctx, createInsightRunSQL, publicID, projectID))
}

const getInsightRunSQL = `
SELECT id, public_id, project_id, status, error, started_at, finished_at, created_at, updated_at
FROM insight_runs
WHERE public_id = $1;
`

func (q *Queries) GetInsightRun(ctx context.Context, publicID string) (InsightRun, error) {
	return scanInsightRun(q.db.QueryRow(ctx, getInsightRunSQL, publicID))
}

const getLatestInsightRunSQL = `
SELECT id, public_id, project_id, status, error, started_at, finished_at, created_at, updated_at
FROM insight_runs
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT 1;
`

func (q *Queries) GetLatestInsightRun(ctx context.Context, projectID int64) (InsightRun, error) {
	return scanInsightRun(q.db.QueryRow(ctx, getLatestInsightRunSQL, projectID))
}

// TryStartInsightRun claims a pending run for processing. pgx.ErrNoRows
// means another worker already claimed it or it was superseded.
const tryStartInsightRunSQL = `
UPDATE insight_runs
SET status = 'building', error = '', started_at = now(), updated_at = now()
WHERE public_id = $1 AND status IN ('pending', 'failed')
RETURNING id, public_id, project_id, status, error, started_at, finished_at, created_at, updated_at;
`

func (q *Queries) TryStartInsightRun(ctx context.Context, publicID string) (InsightRun, error) {
	return scanInsightRun(q.db.QueryRow(ctx, tryStartInsightRunSQL, publicID))
}

const setInsightRunStatusSQL = `
UPDATE insight_runs
SET status = $2, error = $3, updated_at = now()
WHERE public_id = $1;
`

type SetInsightRunStatusParams struct {
	PublicID string
	Status   string
	Error    string
}

func (q *Queries) SetInsightRunStatus(ctx context.Context, params SetInsightRunStatusParams) error {
	_, err := q.db.Exec(ctx, setInsightRunStatusSQL, params.PublicID, params.Status, params.Error)
	return err
}

const finishInsightRunSQL = `
UPDATE insight_runs
SET status = $2, error = $3, finished_at = now(), updated_at = now()
WHERE public_id = $1;
`

func (q *Queries) FinishInsightRun(ctx context.Context, params SetInsightRunStatusParams) error {
	_, err := q.db.Exec(ctx, finishInsightRunSQL, params.PublicID, params.Status, params.Error)
	return err
}

const resetInsightRunToPendingSQL = `
UPDATE insight_runs
SET status = 'pending', started_at = NULL, updated_at = now()
WHERE public_id = $1 AND status IN ('building', 'ranking', 'reporting');
`

func (q *Queries) ResetInsightRunToPending(ctx context.Context, publicID string) error {
	_, err := q.db.Exec(ctx, resetInsightRunToPendingSQL, publicID)
	return err
}

// GetStaleInsightRuns finds runs stuck mid-flight, e.g. after a worker
// crash: still marked as processing but untouched for the given number of
// minutes.
const getStaleInsightRunsSQL = `
SELECT id, public_id, project_id, status, error, started_at, finished_at, created_at, updated_at
FROM insight_runs
WHERE status IN ('building', 'ranking', 'reporting')
  AND updated_at < now() - ($1::bigint * interval '1 minute')
ORDER BY created_at;
`

func (q *Queries) GetStaleInsightRuns(ctx context.Context, olderThanMinutes int64) ([]InsightRun, error) {
	rows, err := q.db.Query(ctx, getStaleInsightRunsSQL, olderThanMinutes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []InsightRun
	for rows.Next() {
		run, err := scanInsightRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// AverageInsightRunDuration returns the mean duration in milliseconds over
// the project's last completed runs, 0 when the project has none yet.
const averageInsightRunDurationSQL = `
SELECT COALESCE(avg(extract(epoch FROM (finished_at - started_at)) * 1000), 0)::bigint
FROM (
    SELECT started_at, finished_at
    FROM insight_runs
    WHERE project_id = $1
      AND status = 'completed'
      AND started_at IS NOT NULL
      AND finished_at IS NOT NULL
    ORDER BY finished_at DESC
    LIMIT $2
) recent;
`

func (q *Queries) AverageInsightRunDuration(ctx context.Context, projectID int64, lastN int32) (int64, error) {
	var ms int64
	err := q.db.QueryRow(ctx, averageInsightRunDurationSQL, projectID, lastN).Scan(&ms)
	return ms, err
}

type insightRunRow interface {
	Scan(dest ...any) error
}

func scanInsightRun(row insightRunRow) (InsightRun, error) {
	var r InsightRun
	err := row.Scan(
		&r.ID,
		&r.PublicID,
		&r.ProjectID,
		&r.Status,
		&r.Error,
		&r.StartedAt,
		&r.FinishedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	return r, err
}
