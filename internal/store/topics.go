package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

type InsertReportTopicParams struct {
	ReportID   int64
	ProjectID  int64
	Label      string
	Community  int32
	Narrative  string
	Sentiment  int32
	Strength   int32
	Centrality float64
	Embedding  []float32
}

// InsertReportTopics bulk-inserts the quadrant topics of one report via
// COPY. A topic without an embedding gets a NULL vector and is simply never
// returned by the semantic search.
func (q *Queries) InsertReportTopics(ctx context.Context, topics []InsertReportTopicParams) (int64, error) {
	if len(topics) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(topics))
	for _, t := range topics {
		var embedding any
		if len(t.Embedding) > 0 {
			embedding = pgvector.NewVector(t.Embedding)
		}
		rows = append(rows, []any{
			t.ReportID,
			t.ProjectID,
			t.Label,
			t.Community,
			t.Narrative,
			t.Sentiment,
			t.Strength,
			t.Centrality,
			embedding,
		})
	}

	return q.db.CopyFrom(
		ctx,
		pgx.Identifier{"report_topics"},
		[]string{"report_id", "project_id", "label", "community", "narrative", "sentiment", "strength", "centrality", "embedding"},
		pgx.CopyFromRows(rows),
	)
}

const listReportTopicsSQL = `
SELECT id, report_id, project_id, label, community, narrative, sentiment, strength, centrality
FROM report_topics
WHERE report_id = $1
ORDER BY strength DESC, label;
`

func (q *Queries) ListReportTopics(ctx context.Context, reportID int64) ([]ReportTopic, error) {
	rows, err := q.db.Query(ctx, listReportTopicsSQL, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []ReportTopic
	for rows.Next() {
		var t ReportTopic
		err := rows.Scan(
			&t.ID,
			&t.ReportID,
			&t.ProjectID,
			&t.Label,
			&t.Community,
			&t.Narrative,
			&t.Sentiment,
			&t.Strength,
			&t.Centrality,
		)
		if err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

const searchReportTopicsSQL = `
SELECT id, report_id, project_id, label, community, narrative, sentiment, strength, centrality,
       embedding <=> $2 AS distance
FROM report_topics
WHERE report_id = $1 AND embedding IS NOT NULL
ORDER BY embedding <=> $2
LIMIT $3;
`

type ReportTopicMatch struct {
	ReportTopic
	Distance float64 `json:"distance"`
}

// SearchReportTopics returns the report's topics nearest to the query
// embedding by cosine distance.
func (q *Queries) SearchReportTopics(ctx context.Context, reportID int64, embedding []float32, limit int32) ([]ReportTopicMatch, error) {
	rows, err := q.db.Query(ctx, searchReportTopicsSQL, reportID, pgvector.NewVector(embedding), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []ReportTopicMatch
	for rows.Next() {
		var m ReportTopicMatch
		err := rows.Scan(
			&m.ID,
			&m.ReportID,
			&m.ProjectID,
			&m.Label,
			&m.Community,
			&m.Narrative,
			&m.Sentiment,
			&m.Strength,
			&m.Centrality,
			&m.Distance,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
