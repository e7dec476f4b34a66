package routes

import (
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"
	"github.com/meridianlabs/brandgraph/pkg/logger"

	"github.com/labstack/echo/v4"
)

func RemoveProjectMemberHandler(c echo.Context) error {
	type removeMemberResponse struct {
		Message string `json:"message"`
	}

	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, removeMemberResponse{
			Message: "Invalid project ID",
		})
	}
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, removeMemberResponse{
			Message: "Invalid user ID",
		})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	if err := q.RemoveProjectMember(ctx, projectID, userID); err != nil {
		logger.Error("Failed to remove project member", "project_id", projectID, "user_id", userID, "err", err)
		return c.JSON(http.StatusInternalServerError, removeMemberResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, removeMemberResponse{
		Message: "Member removed successfully",
	})
}
