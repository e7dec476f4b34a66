package timing

import (
	"context"
	"time"

	"github.com/meridianlabs/brandgraph/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
)

// averageOverRuns bounds how many completed runs feed the estimate so old
// runs against a much smaller record set stop skewing it.
const averageOverRuns = 10

// PredictRunDuration estimates how long the project's next insight run will
// take, in milliseconds, based on its recent completed runs. Returns 0 when
// the project has no history yet.
func PredictRunDuration(ctx context.Context, conn *pgxpool.Pool, projectID int64) (int64, error) {
	q := store.New(conn)
	return q.AverageInsightRunDuration(ctx, projectID, averageOverRuns)
}

// RemainingRunDuration estimates the remaining time of an in-flight run
// from the prediction and the run's start time. Returns 0 when the run has
// not started or already exceeded the estimate.
func RemainingRunDuration(run store.InsightRun, estimatedMs int64) int64 {
	if estimatedMs <= 0 || run.StartedAt == nil {
		return 0
	}
	elapsed := time.Since(*run.StartedAt).Milliseconds()
	if elapsed >= estimatedMs {
		return 0
	}
	return estimatedMs - elapsed
}
