package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

const defaultTopicSearchLimit = 10

// SearchTopicsHandler finds the topics of the project's latest report that
// are semantically closest to the query string.
func SearchTopicsHandler(c echo.Context) error {
	type searchTopicsResponse struct {
		Query  string                   `json:"query"`
		Topics []store.ReportTopicMatch `json:"topics"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Missing query parameter q"})
	}

	limit := int32(defaultTopicSearchLimit)
	if rawLimit := c.QueryParam("limit"); rawLimit != "" {
		parsed, err := strconv.ParseInt(rawLimit, 10, 32)
		if err != nil || parsed < 1 || parsed > 100 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
		}
		limit = int32(parsed)
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

	aiClient := c.(*middleware.AppContext).App.AiClient
	embedding, err := aiClient.GenerateEmbedding(ctx, []byte(query))
	if err != nil {
		logger.Error("Failed to embed topic query", "project_id", projectID, "err", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Topic search unavailable"})
	}

	matches, err := q.SearchReportTopics(ctx, report.ID, embedding, limit)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if matches == nil {
		matches = make([]store.ReportTopicMatch, 0)
	}

	return c.JSON(http.StatusOK, searchTopicsResponse{
		Query:  query,
		Topics: matches,
	})
}
