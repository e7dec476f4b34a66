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
	"github.com/meridianlabs/brandgraph/pkg/collect"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/loader"
	csvloader "github.com/meridianlabs/brandgraph/pkg/loader/csv"
	s3loader "github.com/meridianlabs/brandgraph/pkg/loader/s3"
	webloader "github.com/meridianlabs/brandgraph/pkg/loader/web"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

const sourceMaxTokens = 500

// ProcessIngestMessage analyzes one batch of mention sources: loads each
// source's text, runs the mention analyzer and stores the resulting analysis
// records. A source that fails is marked failed and fails the batch, so the
// retry topology re-delivers the message and the failed source is reclaimed.
func ProcessIngestMessage(
	ctx context.Context,
	s3Client *awss3.Client,
	adapter ai.Adapter,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(IngestMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	q := store.New(conn)

	project, err := q.GetProject(ctx, data.ProjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("[Queue] Skipping ingest batch: project is gone", "project_id", data.ProjectID, "batch_id", data.BatchID)
			return nil
		}
		return fmt.Errorf("failed to load project %d: %w", data.ProjectID, err)
	}
	if project.Status == store.ProjectStatusDeleting {
		logger.Info("[Queue] Skipping ingest batch: project is being deleted", "project_id", data.ProjectID, "batch_id", data.BatchID)
		return nil
	}

	collector := collect.NewCollector(collect.NewCollectorParams{
		TokenEncoder:       "o200k_base",
		ParallelAiRequests: int(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
	})

	start := time.Now()
	for _, sourceID := range data.SourceIDs {
		source, err := q.TryStartMentionSource(ctx, sourceID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				logger.Info("[Queue] Skipping mention source: already claimed or removed", "project_id", data.ProjectID, "source_id", sourceID)
				continue
			}
			return err
		}

		if err := analyzeSource(ctx, q, s3Client, collector, adapter, project, source); err != nil {
			updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			markErr := q.SetMentionSourceStatus(updateCtx, store.SetMentionSourceStatusParams{
				ID:     source.ID,
				Status: store.SourceStatusFailed,
				Error:  err.Error(),
			})
			cancel()
			if markErr != nil {
				logger.Warn("[Queue] Failed to mark mention source as failed", "source_id", source.ID, "err", markErr)
			}
			return fmt.Errorf("failed to analyze mention source %d: %w", source.ID, err)
		}
	}

	logger.Info("[Queue] Ingest batch completed",
		"project_id", data.ProjectID,
		"batch_id", data.BatchID,
		"sources", len(data.SourceIDs),
		"duration_sec", time.Since(start).Seconds(),
	)

	return nil
}

func analyzeSource(
	ctx context.Context,
	q *store.Queries,
	s3Client *awss3.Client,
	collector *collect.Collector,
	adapter ai.Adapter,
	project store.Project,
	source store.MentionSource,
) error {
	file, webL, err := sourceFileFor(s3Client, source)
	if err != nil {
		return err
	}

	units, err := collector.ProcessSource(ctx, file, project.BrandName, project.CompetitorNames, adapter)
	if err != nil {
		return err
	}

	if webL != nil {
		if title := webL.Title(file); title != "" && title != source.DisplayName {
			if err := q.SetMentionSourceDisplayName(ctx, source.ID, title); err != nil {
				logger.Warn("[Queue] Failed to update source display name", "source_id", source.ID, "err", err)
			}
		}
	}

	payloads := make([]json.RawMessage, 0, len(units))
	for _, unit := range units {
		if unit.Analysis == nil {
			continue
		}
		sanitizeAnalysis(unit.Analysis)
		payload, err := json.Marshal(unit.Analysis)
		if err != nil {
			return fmt.Errorf("failed to marshal analysis for unit %s: %w", unit.ID, err)
		}
		payloads = append(payloads, payload)
	}

	// Re-analysis of a previously failed source must not duplicate its
	// records.
	if err := q.DeleteAnalysisRecordsForSource(ctx, source.ID); err != nil {
		return err
	}
	inserted, err := q.InsertAnalysisRecords(ctx, project.ID, &source.ID, payloads)
	if err != nil {
		return err
	}

	logger.Debug("[Queue] Mention source analyzed",
		"project_id", project.ID,
		"source_id", source.ID,
		"kind", source.Kind,
		"records", inserted,
	)

	return q.SetMentionSourceStatus(ctx, store.SetMentionSourceStatusParams{
		ID:     source.ID,
		Status: store.SourceStatusAnalyzed,
	})
}

// sourceFileFor builds the loader chain for a source row. The web loader is
// returned separately so the caller can read the captured page title.
func sourceFileFor(s3Client *awss3.Client, source store.MentionSource) (loader.SourceFile, *webloader.WebLoader, error) {
	id := fmt.Sprintf("%d", source.ID)
	bucket := util.GetEnvString("AWS_BUCKET", "brandgraph")

	switch source.Kind {
	case store.SourceKindDocument:
		s3L := s3loader.NewS3FileLoaderWithClient(bucket, s3Client)
		return loader.NewDocumentSourceFile(loader.NewSourceFileParams{
			ID:        id,
			Path:      source.Location,
			MaxTokens: sourceMaxTokens,
			Loader:    s3L,
		}), nil, nil
	case store.SourceKindCSV:
		s3L := s3loader.NewS3FileLoaderWithClient(bucket, s3Client)
		return loader.NewCSVSourceFile(loader.NewSourceFileParams{
			ID:        id,
			Path:      source.Location,
			MaxTokens: sourceMaxTokens,
			Loader:    csvloader.NewCSVLoader(s3L),
		}), nil, nil
	case store.SourceKindWeb:
		webL := webloader.NewWebLoader()
		return loader.NewWebSourceFile(loader.NewSourceFileParams{
			ID:        id,
			Path:      source.Location,
			MaxTokens: sourceMaxTokens,
			Loader:    webL,
		}), webL, nil
	default:
		return loader.SourceFile{}, nil, fmt.Errorf("unknown mention source kind %q", source.Kind)
	}
}

// sanitizeAnalysis strips bytes Postgres rejects in jsonb text values.
func sanitizeAnalysis(analysis *common.RecordAnalysis) {
	for i := range analysis.BrandProducts {
		analysis.BrandProducts[i] = util.SanitizePostgresText(analysis.BrandProducts[i])
	}
	for i := range analysis.Keywords {
		analysis.Keywords[i].Keyword = util.SanitizePostgresText(analysis.Keywords[i].Keyword)
	}
	for i := range analysis.Quotes {
		analysis.Quotes[i].Text = util.SanitizePostgresText(analysis.Quotes[i].Text)
		analysis.Quotes[i].Entity = util.SanitizePostgresText(analysis.Quotes[i].Entity)
	}
}
