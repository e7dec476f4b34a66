package routes

import (
	"net/http"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/internal/util"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// CreateProjectHandler creates a new brand project and makes the caller its
// owner.
func CreateProjectHandler(c echo.Context) error {
	type createProjectBody struct {
		Name            string   `json:"name" validate:"required"`
		BrandName       string   `json:"brand_name" validate:"required"`
		CompetitorNames []string `json:"competitor_names"`
	}

	type createProjectResponse struct {
		Message string         `json:"message"`
		Project *store.Project `json:"project,omitempty"`
	}

	data := new(createProjectBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, createProjectResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, createProjectResponse{
			Message: "Invalid request body",
		})
	}

	user := c.(*middleware.AppContext).User
	if user == nil {
		return c.JSON(http.StatusUnauthorized, createProjectResponse{
			Message: "Unauthorized",
		})
	}

	competitorNames := util.DedupeLabels(data.CompetitorNames)

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	tx, err := conn.Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin transaction", "err", err)
		return c.JSON(http.StatusInternalServerError, createProjectResponse{
			Message: "Internal server error",
		})
	}
	defer tx.Rollback(ctx)
	qtx := store.New(conn).WithTx(tx)

	project, err := qtx.CreateProject(ctx, store.CreateProjectParams{
		Name:            data.Name,
		BrandName:       data.BrandName,
		CompetitorNames: competitorNames,
		CreatedBy:       user.UserID,
	})
	if err != nil {
		logger.Error("Failed to create project", "err", err)
		return c.JSON(http.StatusInternalServerError, createProjectResponse{
			Message: "Internal server error",
		})
	}

	_, err = qtx.AddProjectMember(ctx, store.AddProjectMemberParams{
		ProjectID: project.ID,
		UserID:    user.UserID,
		Role:      store.MemberRoleOwner,
	})
	if err != nil {
		logger.Error("Failed to add project owner", "err", err)
		return c.JSON(http.StatusInternalServerError, createProjectResponse{
			Message: "Internal server error",
		})
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit transaction", "err", err)
		return c.JSON(http.StatusInternalServerError, createProjectResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, createProjectResponse{
		Message: "Project created successfully",
		Project: &project,
	})
}
