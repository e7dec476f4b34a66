package server

import (
	"github.com/meridianlabs/brandgraph/internal/server/middleware"
	"github.com/meridianlabs/brandgraph/internal/server/routes"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Project routes
	apiRoutes.GET("/projects", routes.ListProjectsHandler)
	apiRoutes.POST("/projects", routes.CreateProjectHandler, middleware.RequirePermission("project.create"))
	apiRoutes.GET("/projects/:id", routes.GetProjectHandler, middleware.RequireProjectMember)
	apiRoutes.PATCH("/projects/:id", routes.UpdateProjectHandler, middleware.RequirePermission("project.update"), middleware.RequireProjectMember)
	apiRoutes.DELETE("/projects/:id", routes.DeleteProjectHandler, middleware.RequirePermission("project.delete"), middleware.RequireProjectMember)

	// Project member routes
	apiRoutes.GET("/projects/:id/members", routes.ListProjectMembersHandler, middleware.RequirePermission("project.list:member"), middleware.RequireProjectMember)
	apiRoutes.POST("/projects/:id/members", routes.AddProjectMemberHandler, middleware.RequirePermission("project.add:member"), middleware.RequireProjectMember)
	apiRoutes.DELETE("/projects/:id/members/:userId", routes.RemoveProjectMemberHandler, middleware.RequirePermission("project.remove:member"), middleware.RequireProjectMember)

	// Mention ingestion routes
	apiRoutes.GET("/projects/:id/mentions", routes.ListMentionsHandler, middleware.RequireProjectMember)
	apiRoutes.POST("/projects/:id/mentions", routes.CreateMentionsHandler, middleware.RequirePermission("mention.create"), middleware.RequireProjectMember)
	apiRoutes.GET("/projects/:id/records", routes.ListRecordsHandler, middleware.RequirePermission("record.view"), middleware.RequireProjectMember)
	apiRoutes.POST("/projects/:id/records", routes.PushRecordsHandler, middleware.RequirePermission("record.create"), middleware.RequireProjectMember)

	// Insight run routes
	apiRoutes.POST("/projects/:id/runs", routes.StartRunHandler, middleware.RequirePermission("insight.run"), middleware.RequireProjectMember)
	apiRoutes.GET("/projects/:id/runs/:runId", routes.GetRunHandler, middleware.RequireProjectMember)

	// Report routes
	apiRoutes.GET("/projects/:id/reports/latest", routes.GetLatestReportHandler, middleware.RequirePermission("insight.view"), middleware.RequireProjectMember)
	apiRoutes.GET("/reports/:reportId", routes.GetReportHandler, middleware.RequirePermission("insight.view"))
	apiRoutes.POST("/projects/:id/reports/:reportId/brief", routes.RequeueBriefHandler, middleware.RequirePermission("insight.run"), middleware.RequireProjectMember)
	apiRoutes.GET("/projects/:id/topics/search", routes.SearchTopicsHandler, middleware.RequirePermission("insight.view"), middleware.RequireProjectMember)
}
