package projects

import "github.com/labstack/echo/v4"

type Handler interface {
	CreateProject() echo.HandlerFunc
	GetProject() echo.HandlerFunc
	ListProjects() echo.HandlerFunc
	UpdateProject() echo.HandlerFunc
	DeleteProject() echo.HandlerFunc

	GetUploadURL() echo.HandlerFunc
	ListSourceVideos() echo.HandlerFunc

	CreateJob() echo.HandlerFunc
	GetJobStatus() echo.HandlerFunc
	ListJobs() echo.HandlerFunc
	SubmitSelection() echo.HandlerFunc
	ReRenderJob() echo.HandlerFunc

	ListOutputs() echo.HandlerFunc
}
