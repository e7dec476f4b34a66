package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

func GetLatestReportHandler(c echo.Context) error {
	type latestReportResponse struct {
		Report store.InsightReport `json:"report"`
		Topics []store.ReportTopic `json:"topics"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	report, err := q.GetLatestInsightReport(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No report available yet"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	topics, err := q.ListReportTopics(ctx, report.ID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if topics == nil {
		topics = make([]store.ReportTopic, 0)
	}

	return c.JSON(http.StatusOK, latestReportResponse{
		Report: report,
		Topics: topics,
	})
}

func GetReportHandler(c echo.Context) error {
	type getReportResponse struct {
		Report store.InsightReport `json:"report"`
		Topics []store.ReportTopic `json:"topics"`
	}

	reportID, err := strconv.ParseInt(c.Param("reportId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid report ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	report, err := q.GetInsightReport(ctx, reportID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Report not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	user := c.(*middleware.AppContext).User
	if !middleware.HasPermission(user, "project.view:all") {
		count, err := store.New(conn).IsProjectMember(ctx, report.ProjectID, user.UserID)
		if err != nil || count == 0 {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "Forbidden: not a project member"})
		}
	}

	topics, err := q.ListReportTopics(ctx, report.ID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if topics == nil {
		topics = make([]store.ReportTopic, 0)
	}

	return c.JSON(http.StatusOK, getReportResponse{
		Report: report,
		Topics: topics,
	})
}
