package http

import (
	"github.com/reelmaker/reelmaker-backend/internal/middleware"
	"github.com/reelmaker/reelmaker-backend/internal/projects"

	"github.com/labstack/echo/v4"
)

func MapProjectRoutes(projectGroup *echo.Group, h projects.Handler, mw *middleware.MiddlewareManager) {
	projectGroup.Use(mw.AuthJWTMiddleware())

	projectGroup.POST("", h.CreateProject())
	projectGroup.GET("", h.ListProjects())
	projectGroup.GET("/:project_id", h.GetProject())
	projectGroup.PUT("/:project_id", h.UpdateProject())
	projectGroup.DELETE("/:project_id", h.DeleteProject())

	projectGroup.POST("/:project_id/upload-url", h.GetUploadURL())
	projectGroup.GET("/:project_id/videos", h.ListSourceVideos())

	projectGroup.POST("/:project_id/jobs", h.CreateJob())
	projectGroup.GET("/:project_id/jobs", h.ListJobs())
	projectGroup.GET("/jobs/:job_id", h.GetJobStatus())
	projectGroup.POST("/jobs/:job_id/selection", h.SubmitSelection())
	projectGroup.POST("/jobs/:job_id/re-render", h.ReRenderJob())

	projectGroup.GET("/:project_id/outputs", h.ListOutputs())
}
