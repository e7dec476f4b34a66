package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/queue"
	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StartRunHandler queues a new insight run over the project's current
// analysis records. An already queued or processing run is returned as-is
// instead of starting a second one.
func StartRunHandler(c echo.Context) error {
	type startRunResponse struct {
		Message string            `json:"message"`
		Run     *store.InsightRun `json:"run,omitempty"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, startRunResponse{
			Message: "Invalid project ID",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	project, err := q.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, startRunResponse{
				Message: "Project not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, startRunResponse{
			Message: "Internal server error",
		})
	}
	if project.Status == store.ProjectStatusDeleting {
		return c.JSON(http.StatusConflict, startRunResponse{
			Message: "Project is being deleted",
		})
	}

	latest, err := q.GetLatestInsightRun(ctx, project.ID)
	if err == nil {
		switch latest.Status {
		case util.RunStagePending, util.RunStageBuilding, util.RunStageRanking, util.RunStageReporting:
			return c.JSON(http.StatusOK, startRunResponse{
				Message: "A run is already in progress",
				Run:     &latest,
			})
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return c.JSON(http.StatusInternalServerError, startRunResponse{
			Message: "Internal server error",
		})
	}

	publicID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, startRunResponse{
			Message: "Internal server error",
		})
	}

	run, err := q.CreateInsightRun(ctx, publicID, project.ID)
	if err != nil {
		logger.Error("Failed to create insight run", "project_id", project.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, startRunResponse{
			Message: "Internal server error",
		})
	}

	msgBytes, err := json.Marshal(queue.InsightMsg{
		Message:   "Insight run queued",
		ProjectID: project.ID,
		RunID:     run.PublicID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, startRunResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.InsightQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to insight_queue", "run_id", run.PublicID, "err", err)
		return c.JSON(http.StatusInternalServerError, startRunResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, startRunResponse{
		Message: "Insight run queued",
		Run:     &run,
	})
}
