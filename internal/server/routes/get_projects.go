package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	serverutil "github.com/meridianlabs/brandgraph/internal/server/util"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/util"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

func ListProjectsHandler(c echo.Context) error {
	type projectEntry struct {
		Project       store.Project     `json:"project"`
		InsightStatus string            `json:"insight_status"`
		Progress      *util.RunProgress `json:"progress,omitempty"`
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	projects, err := q.ListProjectsForUser(ctx, user.UserID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	entries := make([]projectEntry, 0, len(projects))
	for _, project := range projects {
		entry := projectEntry{Project: project}

		run, err := q.GetLatestInsightRun(ctx, project.ID)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return c.String(http.StatusInternalServerError, err.Error())
			}
			entry.InsightStatus = serverutil.InsightStatusFromRunStatus("", false)
		} else {
			entry.InsightStatus = serverutil.InsightStatusFromRunStatus(run.Status, true)
			if entry.InsightStatus == "processing" || entry.InsightStatus == "queued" {
				progress, err := projectRunProgress(ctx, conn, project.ID, run)
				if err == nil {
					entry.Progress = &progress
				}
			}
		}

		entries = append(entries, entry)
	}

	return c.JSON(http.StatusOK, entries)
}

func GetProjectHandler(c echo.Context) error {
	type getProjectResponse struct {
		Project       store.Project                   `json:"project"`
		InsightStatus string                          `json:"insight_status"`
		Sources       store.MentionSourceStatusCounts `json:"sources"`
		RecordCount   int64                           `json:"record_count"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	project, err := q.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Project not found"})
		}
		return c.String(http.StatusInternalServerError, err.Error())
	}

	sources, err := q.CountMentionSourceStatus(ctx, project.ID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	recordCount, err := q.CountAnalysisRecords(ctx, project.ID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	insightStatus := serverutil.InsightStatusFromRunStatus("", false)
	if run, err := q.GetLatestInsightRun(ctx, project.ID); err == nil {
		insightStatus = serverutil.InsightStatusFromRunStatus(run.Status, true)
	}

	return c.JSON(http.StatusOK, getProjectResponse{
		Project:       project,
		InsightStatus: insightStatus,
		Sources:       sources,
		RecordCount:   recordCount,
	})
}
