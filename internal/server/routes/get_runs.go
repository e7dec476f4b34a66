package routes

import (
	"context"
	"errors"
	"net/http"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/timing"
	"github.com/meridianlabs/brandgraph/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

func GetRunHandler(c echo.Context) error {
	type getRunResponse struct {
		Run      store.InsightRun `json:"run"`
		Progress util.RunProgress `json:"progress"`
	}

	runID := c.Param("runId")
	if runID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid run ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	run, err := q.GetInsightRun(ctx, runID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Run not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	progress, err := projectRunProgress(ctx, conn, run.ProjectID, run)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, getRunResponse{
		Run:      run,
		Progress: progress,
	})
}

// projectRunProgress combines the project's mention-source counters with
// the run's stage and a duration estimate from past runs.
func projectRunProgress(ctx context.Context, conn *pgxpool.Pool, projectID int64, run store.InsightRun) (util.RunProgress, error) {
	q := store.New(conn)

	sources, err := q.CountMentionSourceStatus(ctx, projectID)
	if err != nil {
		return util.RunProgress{}, err
	}

	counts := util.RunProgressCounts{
		SourceTotal:     sources.Total,
		SourcePending:   sources.Pending,
		SourceAnalyzing: sources.Analyzing,
		SourceAnalyzed:  sources.Analyzed,
		SourceFailed:    sources.Failed,
		RunStage:        run.Status,
	}

	estimatedMs, err := timing.PredictRunDuration(ctx, conn, projectID)
	if err == nil && estimatedMs > 0 {
		counts.TotalEstimatedDuration = estimatedMs
		counts.RemainingEstimatedDuration = timing.RemainingRunDuration(run, estimatedMs)
	}

	return util.BuildRunProgress(counts), nil
}
