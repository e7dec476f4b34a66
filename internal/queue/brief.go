package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	serverutil "github.com/meridianlabs/brandgraph/internal/server/util"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/ai"
	"github.com/meridianlabs/brandgraph/pkg/brief"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProcessBriefMessage generates the executive brief for a stored report,
// validates its topic citations against the report's quadrant and saves the
// result. The report stays readable without a brief, so a permanently
// failing brief never blocks the run pipeline.
func ProcessBriefMessage(
	ctx context.Context,
	adapter ai.Adapter,
	conn *pgxpool.Pool,
	msg string,
) error {
	data := new(BriefMsg)
	if err := json.Unmarshal([]byte(msg), data); err != nil {
		return err
	}

	q := store.New(conn)

	stored, err := q.GetInsightReport(ctx, data.ReportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Info("[Queue] Skipping brief: report is gone", "report_id", data.ReportID)
			return nil
		}
		return fmt.Errorf("failed to load report %d: %w", data.ReportID, err)
	}

	report := new(common.InsightReport)
	if err := json.Unmarshal(stored.Report, report); err != nil {
		return fmt.Errorf("failed to decode report %d: %w", stored.ID, err)
	}

	generator := brief.NewGenerator(brief.NewGeneratorParams{
		ParallelAiRequests: int(util.GetEnvNumeric("AI_PARALLEL_REQ", 15)),
	})

	start := time.Now()
	text, err := generator.Generate(ctx, report, adapter)
	if err != nil {
		return fmt.Errorf("failed to generate brief for report %d: %w", stored.ID, err)
	}

	labels := make([]string, 0, len(report.Quadrant))
	for _, entry := range report.Quadrant {
		labels = append(labels, entry.Topic)
	}
	text, citedTopics := serverutil.ValidateBriefCitations(text, labels)

	err = q.SetInsightReportBrief(ctx, store.SetInsightReportBriefParams{
		ID:          stored.ID,
		Brief:       util.SanitizePostgresText(text),
		BriefTopics: citedTopics,
	})
	if err != nil {
		return fmt.Errorf("failed to store brief for report %d: %w", stored.ID, err)
	}

	logger.Info("[Queue] Executive brief completed",
		"project_id", stored.ProjectID,
		"report_id", stored.ID,
		"cited_topics", len(citedTopics),
		"duration_sec", time.Since(start).Seconds(),
	)

	return nil
}
