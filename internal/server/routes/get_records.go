package routes

import (
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"

	"github.com/labstack/echo/v4"
)

func ListRecordsHandler(c echo.Context) error {
	type listRecordsResponse struct {
		Records []store.AnalysisRecord `json:"records"`
		Total   int64                  `json:"total"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	records, err := q.ListAnalysisRecords(ctx, projectID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}
	if records == nil {
		records = make([]store.AnalysisRecord, 0)
	}

	return c.JSON(http.StatusOK, listRecordsResponse{
		Records: records,
		Total:   int64(len(records)),
	})
}
