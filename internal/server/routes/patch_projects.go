package routes

import (
	"errors"
	"net/http"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// UpdateProjectHandler renames a project or changes its brand and
// competitor setup. A changed setup only affects future analysis; existing
// records and reports keep the labels they were built with.
func UpdateProjectHandler(c echo.Context) error {
	type updateProjectBody struct {
		ProjectID       int64    `param:"id" validate:"required,numeric"`
		Name            string   `json:"name" validate:"required"`
		BrandName       string   `json:"brand_name" validate:"required"`
		CompetitorNames []string `json:"competitor_names"`
	}

	type updateProjectResponse struct {
		Message string         `json:"message"`
		Project *store.Project `json:"project,omitempty"`
	}

	data := new(updateProjectBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateProjectResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, updateProjectResponse{
			Message: "Invalid request body",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	project, err := q.UpdateProject(ctx, store.UpdateProjectParams{
		ID:              data.ProjectID,
		Name:            data.Name,
		BrandName:       data.BrandName,
		CompetitorNames: util.DedupeLabels(data.CompetitorNames),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, updateProjectResponse{
				Message: "Project not found",
			})
		}
		logger.Error("Failed to update project", "err", err)
		return c.JSON(http.StatusInternalServerError, updateProjectResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, updateProjectResponse{
		Message: "Project updated successfully",
		Project: &project,
	})
}
