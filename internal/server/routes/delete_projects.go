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

// DeleteProjectHandler marks a project for deletion and hands the purge to
// the deletion worker. The project stops accepting work immediately; rows
// and uploaded files disappear asynchronously.
func DeleteProjectHandler(c echo.Context) error {
	type deleteProjectResponse struct {
		Message string `json:"message"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, deleteProjectResponse{
			Message: "Invalid project ID",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	if _, err := q.GetProject(ctx, projectID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, deleteProjectResponse{
				Message: "Project not found",
			})
		}
		return c.JSON(http.StatusInternalServerError, deleteProjectResponse{
			Message: "Internal server error",
		})
	}

	if err := q.SetProjectStatus(ctx, projectID, store.ProjectStatusDeleting); err != nil {
		logger.Error("Failed to mark project for deletion", "project_id", projectID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteProjectResponse{
			Message: "Internal server error",
		})
	}

	msgBytes, err := json.Marshal(queue.DeleteMsg{ProjectID: projectID})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, deleteProjectResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.DeleteQueue, msgBytes); err != nil {
		logger.Error("Failed to publish to delete_queue", "project_id", projectID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteProjectResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteProjectResponse{
		Message: "Project deletion queued",
	})
}
