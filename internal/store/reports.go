package store

import (
	"context"
	"encoding/json"
)

const createInsightReportSQL = `
INSERT INTO insight_reports (project_id, run_id, report, record_count)
VALUES ($1, $2, $3, $4)
RETURNING id, project_id, run_id, report, brief, brief_topics, record_count, created_at;
`

type CreateInsightReportParams struct {
	ProjectID   int64
	RunID       int64
	Report      json.RawMessage
	RecordCount int32
}

func (q *Queries) CreateInsightReport(ctx context.Context, params CreateInsightReportParams) (InsightReport, error) {
	row := q.db.QueryRow(ctx, createInsightReportSQL,
		params.ProjectID,
		params.RunID,
		params.Report,
		params.RecordCount,
	)
	return scanInsightReport(row)
}

const getInsightReportSQL = `
SELECT id, project_id, run_id, report, brief, brief_topics, record_count, created_at
FROM insight_reports
WHERE id = $1;
`

func (q *Queries) GetInsightReport(ctx context.Context, id int64) (InsightReport, error) {
	return scanInsightReport(q.db.QueryRow(ctx, getInsightReportSQL, id))
}

const getLatestInsightReportSQL = `
SELECT id, project_id, run_id, report, brief, brief_topics, record_count, created_at
FROM insight_reports
WHERE project_id = $1
ORDER BY created_at DESC
LIMIT 1;
`

func (q *Queries) GetLatestInsightReport(ctx context.Context, projectID int64) (InsightReport, error) {
	return scanInsightReport(q.db.QueryRow(ctx, getLatestInsightReportSQL, projectID))
}

const setInsightReportBriefSQL = `
UPDATE insight_reports
SET brief = $2, brief_topics = $3
WHERE id = $1;
`

type SetInsightReportBriefParams struct {
	ID          int64
	Brief       string
	BriefTopics []string
}

func (q *Queries) SetInsightReportBrief(ctx context.Context, params SetInsightReportBriefParams) error {
	_, err := q.db.Exec(ctx, setInsightReportBriefSQL, params.ID, params.Brief, params.BriefTopics)
	return err
}

type insightReportRow interface {
	Scan(dest ...any) error
}

func scanInsightReport(row insightReportRow) (InsightReport, error) {
	var r InsightReport
	err := row.Scan(
		&r.ID,
		&r.ProjectID,
		&r.RunID,
		&r.Report,
		&r.Brief,
		&r.BriefTopics,
		&r.RecordCount,
		&r.CreatedAt,
	)
	return r, err
}
