package routes

import (
	"encoding/json"
	"net/http"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/common"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// PushRecordsHandler ingests pre-analyzed records directly, bypassing the
// collector pipeline. Used by callers that run their own analysis and only
// want the graph engine.
func PushRecordsHandler(c echo.Context) error {
	type pushRecordsBody struct {
		ProjectID int64                   `param:"id" validate:"required,numeric"`
		Records   []common.RecordAnalysis `json:"records" validate:"required,min=1,dive"`
	}

	type pushRecordsResponse struct {
		Message  string `json:"message"`
		Inserted int64  `json:"inserted"`
	}

	data := new(pushRecordsBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, pushRecordsResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, pushRecordsResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	project, err := q.GetProject(ctx, data.ProjectID)
	if err != nil {
		return c.JSON(http.StatusNotFound, pushRecordsResponse{
			Message: "Project not found",
		})
	}
	if project.Status == store.ProjectStatusDeleting {
		return c.JSON(http.StatusConflict, pushRecordsResponse{
			Message: "Project is being deleted",
		})
	}

	payloads := make([]json.RawMessage, 0, len(data.Records))
	for i := range data.Records {
		payload, err := json.Marshal(&data.Records[i])
		if err != nil {
			return c.JSON(http.StatusBadRequest, pushRecordsResponse{
				Message: "Invalid request body",
			})
		}
		payloads = append(payloads, payload)
	}

	inserted, err := q.InsertAnalysisRecords(ctx, project.ID, nil, payloads)
	if err != nil {
		logger.Error("Failed to insert analysis records", "project_id", project.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, pushRecordsResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, pushRecordsResponse{
		Message:  "Records stored successfully",
		Inserted: inserted,
	})
}
