package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/queue"
	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// RequeueBriefHandler queues brief generation for a stored report again,
// for reports whose brief failed or should be regenerated.
func RequeueBriefHandler(c echo.Context) error {
	type requeueBriefResponse struct {
		Message string `json:"message"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, requeueBriefResponse{
			Message: "Invalid project ID",
		})
	}
	reportID, err := strconv.ParseInt(c.Param("reportId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, requeueBriefResponse{
			Message: "Invalid report ID",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	report, err := q.GetInsightReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, requeueBriefResponse{
				Message: "Report not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, requeueBriefResponse{
			Message: "Internal server error",
		})
	}
	if report.ProjectID != projectID {
		return c.JSON(http.StatusNotFound, requeueBriefResponse{
			Message: "Report not found",
		})
	}

	msgBytes, err := json.Marshal(queue.BriefMsg{
		ProjectID: report.ProjectID,
		ReportID:  report.ID,
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, requeueBriefResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.BriefQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to brief_queue", "report_id", report.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, requeueBriefResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, requeueBriefResponse{
		Message: "Brief generation queued",
	})
}
