package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/graph"
	"github.com/meridianlabs/brandgraph/pkg/leaselock"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// ProcessInsightMessage executes one insight run: builds the knowledge graph
// from the project's analysis records, runs the ranking algorithms and
// persists the report with its quadrant topics. Finishes by queueing the
// executive brief for the new report.
func ProcessInsightMessage(
	ctx context.Context,
	adapter ai.Adapter,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(InsightMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	q := store.New(conn)

	run, err := q.TryStartInsightRun(ctx, data.RunID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("[Queue] Skipping insight run: already claimed or removed", "run_id", data.RunID)
			return nil
		}
		return fmt.Errorf("failed to claim insight run %s: %w", data.RunID, err)
	}

	start := time.Now()
	locker := leaselock.New(conn)
	err = locker.WithLease(ctx, run.ProjectID, leaselock.Options{
		Wait:         true,
		HolderPrefix: fmt.Sprintf("insight/%s/", run.PublicID),
	}, func(ctx context.Context) error {
		return executeInsightRun(ctx, q, adapter, ch, run)
	})
	if err != nil {
		updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		markErr := q.FinishInsightRun(updateCtx, store.SetInsightRunStatusParams{
			PublicID: run.PublicID,
			Status:   util.RunStageFailed,
			Error:    err.Error(),
		})
		cancel()
		if markErr != nil {
			logger.Warn("[Queue] Failed to mark insight run as failed", "run_id", run.PublicID, "err", markErr)
		}
		return fmt.Errorf("insight run %s failed: %w", run.PublicID, err)
	}

	logger.Info("[Queue] Insight run completed",
		"project_id", run.ProjectID,
		"run_id", run.PublicID,
		"duration_sec", time.Since(start).Seconds(),
	)

	return nil
}

func executeInsightRun(
	ctx context.Context,
	q *store.Queries,
	adapter ai.Adapter,
	ch *amqp091.Channel,
	run store.InsightRun,
) error {
	project, err := q.GetProject(ctx, run.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project %d: %w", run.ProjectID, err)
	}
	if project.Status == store.ProjectStatusDeleting {
		return fmt.Errorf("project %d is being deleted", project.ID)
	}

	rows, err := q.ListAnalysisRecords(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("failed to load analysis records: %w", err)
	}

	records := make([]common.AnalysisRecord, 0, len(rows))
	for _, row := range rows {
		analysis := new(common.RecordAnalysis)
		if err := json.Unmarshal(row.Payload, analysis); err != nil {
			logger.Warn("[Queue] Skipping malformed analysis record", "record_id", row.ID, "err", err)
			continue
		}
		records = append(records, common.AnalysisRecord{
			RecordID:        row.ID,
			Analysis:        analysis,
			CompetitorNames: project.CompetitorNames,
		})
	}

	engine := graph.NewEngine(project.BrandName)
	engine.Build(records)

	if err := q.SetInsightRunStatus(ctx, store.SetInsightRunStatusParams{
		PublicID: run.PublicID,
		Status:   util.RunStageRanking,
	}); err != nil {
		return err
	}

	engine.RunAlgorithms()

	if err := q.SetInsightRunStatus(ctx, store.SetInsightRunStatusParams{
		PublicID: run.PublicID,
		Status:   util.RunStageReporting,
	}); err != nil {
		return err
	}

	report := engine.Report(project.CompetitorNames, len(records))
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal insight report: %w", err)
	}

	stored, err := q.CreateInsightReport(ctx, store.CreateInsightReportParams{
		ProjectID:   project.ID,
		RunID:       run.ID,
		Report:      reportJSON,
		RecordCount: int32(len(records)),
	})
	if err != nil {
		return fmt.Errorf("failed to store insight report: %w", err)
	}

	topics := buildReportTopics(engine, report, stored)
	embedTopics(ctx, adapter, topics)
	if _, err := q.InsertReportTopics(ctx, topics); err != nil {
		return fmt.Errorf("failed to store report topics: %w", err)
	}

	if err := q.FinishInsightRun(ctx, store.SetInsightRunStatusParams{
		PublicID: run.PublicID,
		Status:   util.RunStageCompleted,
	}); err != nil {
		return err
	}

	briefMsg, err := json.Marshal(BriefMsg{
		ProjectID: project.ID,
		ReportID:  stored.ID,
	})
	if err != nil {
		return err
	}
	if err := PublishFIFO(ch, BriefQueue, briefMsg); err != nil {
		logger.Warn("[Queue] Failed to queue executive brief", "report_id", stored.ID, "err", err)
	}

	return nil
}

// buildReportTopics joins the quadrant entries with their graph nodes, which
// carry the community assignment and the raw centrality score.
func buildReportTopics(engine *graph.Engine, report *common.InsightReport, stored store.InsightReport) []store.InsertReportTopicParams {
	topics := make([]store.InsertReportTopicParams, 0, len(report.Quadrant))
	for _, entry := range report.Quadrant {
		topic := store.InsertReportTopicParams{
			ReportID:  stored.ID,
			ProjectID: stored.ProjectID,
			Label:     entry.Topic,
			Community: -1,
			Narrative: entry.Narrative,
			Sentiment: int32(entry.Sentiment),
			Strength:  int32(entry.Strength),
		}
		id := graph.NodeID{Type: graph.NodeTypeTopic, Label: entry.Topic}
		if node, ok := engine.Graph().Node(id); ok {
			topic.Centrality = node.Centrality
			if node.HasCommunity {
				topic.Community = int32(node.Community)
			}
		}
		topics = append(topics, topic)
	}
	return topics
}

// embedTopics attaches label embeddings for the semantic topic search. An
// embedding failure degrades the report to exact lookup instead of failing
// the whole run.
func embedTopics(ctx context.Context, adapter ai.Adapter, topics []store.InsertReportTopicParams) {
	if len(topics) == 0 {
		return
	}

	inputs := make([][]byte, 0, len(topics))
	for _, topic := range topics {
		inputs = append(inputs, []byte(topic.Label))
	}

	embeddings, err := adapter.GenerateEmbeddings(ctx, inputs)
	if err != nil || len(embeddings) != len(topics) {
		logger.Warn("[Queue] Topic embeddings unavailable, search disabled for this report", "topics", len(topics), "err", err)
		return
	}

	for i := range topics {
		topics[i].Embedding = embeddings[i]
	}
}
