package routes

import (
	"net/http"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

func AddProjectMemberHandler(c echo.Context) error {
	type addMemberBody struct {
		ProjectID int64  `param:"id" validate:"required,numeric"`
		UserID    int64  `json:"user_id" validate:"required,numeric"`
		Role      string `json:"role" validate:"omitempty,oneof=owner member"`
	}

	type addMemberResponse struct {
		Message string               `json:"message"`
		Member  *store.ProjectMember `json:"member,omitempty"`
	}

	data := new(addMemberBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, addMemberResponse{
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, addMemberResponse{
			Message: "Invalid request body",
		})
	}

	role := data.Role
	if role == "" {
		role = store.MemberRoleMember
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	member, err := q.AddProjectMember(ctx, store.AddProjectMemberParams{
		ProjectID: data.ProjectID,
		UserID:    data.UserID,
		Role:      role,
	})
	if err != nil {
		logger.Error("Failed to add project member", "project_id", data.ProjectID, "err", err)
		return c.JSON(http.StatusInternalServerError, addMemberResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, addMemberResponse{
		Message: "Member added successfully",
		Member:  &member,
	})
}
