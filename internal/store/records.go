package store

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
)

const insertAnalysisRecordSQL = `
INSERT INTO analysis_records (project_id, source_id, payload)
VALUES ($1, $2, $3)
RETURNING id, project_id, source_id, payload, created_at;
`

type InsertAnalysisRecordParams struct {
	ProjectID int64
	SourceID  *int64
	Payload   json.RawMessage
}

func (q *Queries) InsertAnalysisRecord(ctx context.Context, params InsertAnalysisRecordParams) (AnalysisRecord, error) {
	row := q.db.QueryRow(ctx, insertAnalysisRecordSQL, params.ProjectID, params.SourceID, params.Payload)
	var r AnalysisRecord
	err := row.Scan(&r.ID, &r.ProjectID, &r.SourceID, &r.Payload, &r.CreatedAt)
	return r, err
}

// InsertAnalysisRecords bulk-inserts one batch of record payloads via COPY.
func (q *Queries) InsertAnalysisRecords(ctx context.Context, projectID int64, sourceID *int64, payloads []json.RawMessage) (int64, error) {
	if len(payloads) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(payloads))
	for _, payload := range payloads {
		rows = append(rows, []any{projectID, sourceID, payload})
	}

	return q.db.CopyFrom(
		ctx,
		pgx.Identifier{"analysis_records"},
		[]string{"project_id", "source_id", "payload"},
		pgx.CopyFromRows(rows),
	)
}

const listAnalysisRecordsSQL = `
SELECT id, project_id, source_id, payload, created_at
FROM analysis_records
WHERE project_id = $1
ORDER BY id;
`

func (q *Queries) ListAnalysisRecords(ctx context.Context, projectID int64) ([]AnalysisRecord, error) {
	rows, err := q.db.Query(ctx, listAnalysisRecordsSQL, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []AnalysisRecord
	for rows.Next() {
		var r AnalysisRecord
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.SourceID, &r.Payload, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

const countAnalysisRecordsSQL = `
SELECT count(*)
FROM analysis_records
WHERE project_id = $1;
`

func (q *Queries) CountAnalysisRecords(ctx context.Context, projectID int64) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, countAnalysisRecordsSQL, projectID).Scan(&count)
	return count, err
}

const deleteAnalysisRecordsForSourceSQL = `
DELETE FROM analysis_records
WHERE source_id = $1;
`

// DeleteAnalysisRecordsForSource removes the records a source produced, used
// before re-analyzing a failed source so its records are not duplicated.
func (q *Queries) DeleteAnalysisRecordsForSource(ctx context.Context, sourceID int64) error {
	_, err := q.db.Exec(ctx, deleteAnalysisRecordsForSourceSQL, sourceID)
	return err
}
