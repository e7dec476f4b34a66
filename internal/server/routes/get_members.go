package routes

import (
	"net/http"
	"strconv"

	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/store"

	"github.com/labstack/echo/v4"
)

func ListProjectMembersHandler(c echo.Context) error {
	projectID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project ID"})
	}

	ctx := c.Request().Context()
	conn := c.(*middleware.AppContext).App.DBConn
	q := store.New(conn)

	members, err := q.ListProjectMembers(ctx, projectID)
	if err != nil {
		return c.String(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, members)
}
