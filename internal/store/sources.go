package store

import (
	"context"
)

const createMentionSourceSQL = `
INSERT INTO mention_sources (project_id, batch_id, kind, location, display_name)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, project_id, batch_id, kind, location, display_name, status, error, created_at, updated_at;
`

type CreateMentionSourceParams struct {
	ProjectID   int64
	BatchID     string
	Kind        string
	Location    string
	DisplayName string
}

func (q *Queries) CreateMentionSource(ctx context.Context, params CreateMentionSourceParams) (MentionSource, error) {
	row := q.db.QueryRow(ctx, createMentionSourceSQL,
		params.ProjectID,
		params.BatchID,
		params.Kind,
		params.Location,
		params.DisplayName,
	)
	return scanMentionSource(row)
}

const getMentionSourceSQL = `
SELECT id, project_id, batch_id, kind, location, display_name, status, error, created_at, updated_at
FROM mention_sources
WHERE id = $1;
`

func (q *Queries) GetMentionSource(ctx context.Context, id int64) (MentionSource, error) {
	return scanMentionSource(q.db.QueryRow(ctx, getMentionSourceSQL, id))
}

const listMentionSourcesSQL = `
SELECT id, project_id, batch_id, kind, location, display_name, status, error, created_at, updated_at
FROM mention_sources
WHERE project_id = $1
ORDER BY created_at DESC;
`

func (q *Queries) ListMentionSources(ctx context.Context, projectID int64) ([]MentionSource, error) {
	rows, err := q.db.Query(ctx, listMentionSourcesSQL, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []MentionSource
	for rows.Next() {
		s, err := scanMentionSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

// TryStartMentionSource claims a pending source for analysis. It returns
// pgx.ErrNoRows when another worker already claimed it or the source was
// removed, which consumers treat as "skip, already handled".
const tryStartMentionSourceSQL = `
UPDATE mention_sources
SET status = 'analyzing', error = '', updated_at = now()
WHERE id = $1 AND status IN ('pending', 'failed')
RETURNING id, project_id, batch_id, kind, location, display_name, status, error, created_at, updated_at;
`

func (q *Queries) TryStartMentionSource(ctx context.Context, id int64) (MentionSource, error) {
	return scanMentionSource(q.db.QueryRow(ctx, tryStartMentionSourceSQL, id))
}

const setMentionSourceStatusSQL = `
UPDATE mention_sources
SET status = $2, error = $3, updated_at = now()
WHERE id = $1;
`

type SetMentionSourceStatusParams struct {
	ID     int64
	Status string
	Error  string
}

func (q *Queries) SetMentionSourceStatus(ctx context.Context, params SetMentionSourceStatusParams) error {
	_, err := q.db.Exec(ctx, setMentionSourceStatusSQL, params.ID, params.Status, params.Error)
	return err
}

const setMentionSourceDisplayNameSQL = `
UPDATE mention_sources
SET display_name = $2, updated_at = now()
WHERE id = $1;
`

func (q *Queries) SetMentionSourceDisplayName(ctx context.Context, id int64, displayName string) error {
	_, err := q.db.Exec(ctx, setMentionSourceDisplayNameSQL, id, displayName)
	return err
}

// ResetStaleMentionSources returns sources stuck in analyzing longer than
// the given number of minutes back to pending so a restarted worker can
// pick them up again.
const resetStaleMentionSourcesSQL = `
UPDATE mention_sources
SET status = 'pending', updated_at = now()
WHERE status = 'analyzing'
  AND updated_at < now() - ($1::bigint * interval '1 minute')
RETURNING id, project_id, batch_id, kind, location, display_name, status, error, created_at, updated_at;
`

func (q *Queries) ResetStaleMentionSources(ctx context.Context, olderThanMinutes int64) ([]MentionSource, error) {
	rows, err := q.db.Query(ctx, resetStaleMentionSourcesSQL, olderThanMinutes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []MentionSource
	for rows.Next() {
		s, err := scanMentionSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

const resetMentionSourceToPendingSQL = `
UPDATE mention_sources
SET status = 'pending', updated_at = now()
WHERE id = $1 AND status = 'analyzing';
`

func (q *Queries) ResetMentionSourceToPending(ctx context.Context, id int64) error {
	_, err := q.db.Exec(ctx, resetMentionSourceToPendingSQL, id)
	return err
}

const countMentionSourceStatusSQL = `
SELECT
    count(*),
    count(*) FILTER (WHERE status = 'pending'),
    count(*) FILTER (WHERE status = 'analyzing'),
    count(*) FILTER (WHERE status = 'analyzed'),
    count(*) FILTER (WHERE status = 'failed')
FROM mention_sources
WHERE project_id = $1;
`

type MentionSourceStatusCounts struct {
	Total     int64
	Pending   int64
	Analyzing int64
	Analyzed  int64
	Failed    int64
}

func (q *Queries) CountMentionSourceStatus(ctx context.Context, projectID int64) (MentionSourceStatusCounts, error) {
	var c MentionSourceStatusCounts
	err := q.db.QueryRow(ctx, countMentionSourceStatusSQL, projectID).Scan(
		&c.Total,
		&c.Pending,
		&c.Analyzing,
		&c.Analyzed,
		&c.Failed,
	)
	return c, err
}

type mentionSourceRow interface {
	Scan(dest ...any) error
}

func scanMentionSource(row mentionSourceRow) (MentionSource, error) {
	var s MentionSource
	err := row.Scan(
		&s.ID,
		&s.ProjectID,
		&s.BatchID,
		&s.Kind,
		&s.Location,
		&s.DisplayName,
		&s.Status,
		&s.Error,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	return s, err
}
