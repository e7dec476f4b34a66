package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// staleAfterMinutes is how long a claimed run or source may go without a
// status update before a worker is assumed to have died holding it.
const staleAfterMinutes = 30

// RecoverStaleRuns requeues work a crashed worker left behind: insight runs
// stuck in a processing stage and mention sources stuck in analyzing. Called
// on worker startup before consuming begins.
func RecoverStaleRuns(
	ctx context.Context,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
) error {
	q := store.New(conn)

	staleRuns, err := q.GetStaleInsightRuns(ctx, staleAfterMinutes)
	if err != nil {
		return fmt.Errorf("failed to get stale insight runs: %w", err)
	}

	for _, run := range staleRuns {
		if err := q.ResetInsightRunToPending(ctx, run.PublicID); err != nil {
			logger.Error("[Queue] Failed to reset stale insight run", "run_id", run.PublicID, "err", err)
			continue
		}

		msgBytes, err := json.Marshal(InsightMsg{
			Message:   "Recovered stale insight run",
			ProjectID: run.ProjectID,
			RunID:     run.PublicID,
		})
		if err != nil {
			logger.Error("[Queue] Failed to marshal recovery message", "run_id", run.PublicID, "err", err)
			continue
		}

		if err := PublishFIFO(ch, InsightQueue, msgBytes); err != nil {
			logger.Error("[Queue] Failed to republish stale insight run", "run_id", run.PublicID, "err", err)
			continue
		}

		logger.Info("[Queue] Recovered stale insight run", "run_id", run.PublicID, "project_id", run.ProjectID)
	}

	staleSources, err := q.ResetStaleMentionSources(ctx, staleAfterMinutes)
	if err != nil {
		return fmt.Errorf("failed to reset stale mention sources: %w", err)
	}

	for _, source := range staleSources {
		msgBytes, err := json.Marshal(IngestMsg{
			Message:   "Recovered stale mention source",
			ProjectID: source.ProjectID,
			BatchID:   fmt.Sprintf("recovered-%d", source.ID),
			SourceIDs: []int64{source.ID},
		})
		if err != nil {
			logger.Error("[Queue] Failed to marshal recovery message", "source_id", source.ID, "err", err)
			continue
		}

		if err := PublishFIFO(ch, IngestQueue, msgBytes); err != nil {
			logger.Error("[Queue] Failed to republish stale mention source", "source_id", source.ID, "err", err)
			continue
		}

		logger.Info("[Queue] Recovered stale mention source", "source_id", source.ID, "project_id", source.ProjectID)
	}

	if len(staleRuns) == 0 && len(staleSources) == 0 {
		logger.Debug("[Queue] No stale work found")
	}

	return nil
}

// ResetRunStatusForRetry rolls a failed delivery's database state back to
// pending so the redelivered message can claim it again. Best effort; a
// claim that stays stuck is picked up by stale recovery.
func ResetRunStatusForRetry(
	ctx context.Context,
	conn *pgxpool.Pool,
	queueName string,
	msgBody []byte,
) {
	q := store.New(conn)

	switch queueName {
	case InsightQueue:
		var data InsightMsg
		if err := json.Unmarshal(msgBody, &data); err != nil || data.RunID == "" {
			return
		}
		_ = q.ResetInsightRunToPending(ctx, data.RunID)
	case IngestQueue:
		var data IngestMsg
		if err := json.Unmarshal(msgBody, &data); err != nil {
			return
		}
		for _, sourceID := range data.SourceIDs {
			_ = q.ResetMentionSourceToPending(ctx, sourceID)
		}
	}
}
