package http

import (
	"net/http"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/projects"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type projectHandler struct {
	cfg       *config.Config
	projectUC projects.UseCase
	logger    logger.Logger
}

func NewProjectHandler(cfg *config.Config, projectUC projects.UseCase, logger logger.Logger) projects.Handler {
	return &projectHandler{
		cfg:       cfg,
		projectUC: projectUC,
		logger:    logger,
	}
}

func (h *projectHandler) CreateProject() echo.HandlerFunc {
	return func(c echo.Context) error {
		project := &models.Project{}
		if err := c.Bind(project); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		created, err := h.projectUC.CreateProject(c.Request().Context(), project)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, created)
	}
}

func (h *projectHandler) GetProject() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		project, err := h.projectUC.GetProject(c.Request().Context(), projectID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, project)
	}
}

func (h *projectHandler) ListProjects() echo.HandlerFunc {
	return func(c echo.Context) error {
		pq, err := utils.GetPaginationFromCtx(c)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid pagination params"})
		}
		list, err := h.projectUC.ListProjects(c.Request().Context(), pq)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, list)
	}
}

func (h *projectHandler) UpdateProject() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		input := &models.ProjectUpdateInput{}
		if err = c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		updated, err := h.projectUC.UpdateProject(c.Request().Context(), projectID, input)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, updated)
	}
}

func (h *projectHandler) DeleteProject() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		if err = h.projectUC.DeleteProject(c.Request().Context(), projectID); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "Project deleted successfully"})
	}
}

func (h *projectHandler) GetUploadURL() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		input := &models.SourceVideoInput{}
		if err = c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		url, video, err := h.projectUC.GetUploadURL(c.Request().Context(), projectID, input)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"upload_url": url,
			"video":      video,
		})
	}
}

func (h *projectHandler) ListSourceVideos() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		videos, err := h.projectUC.GetSourceVideos(c.Request().Context(), projectID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, videos)
	}
}

func (h *projectHandler) CreateJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		input := &models.JobCreateInput{}
		if err = c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		job, err := h.projectUC.CreateJob(c.Request().Context(), projectID, input)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusCreated, job)
	}
}

func (h *projectHandler) GetJobStatus() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.projectUC.GetJobStatus(c.Request().Context(), jobID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *projectHandler) ListJobs() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		jobs, err := h.projectUC.ListJobs(c.Request().Context(), projectID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, jobs)
	}
}

func (h *projectHandler) SubmitSelection() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		input := &models.SelectionInput{}
		if err = c.Bind(input); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
		}
		job, err := h.projectUC.SubmitSelection(c.Request().Context(), jobID, input)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *projectHandler) ReRenderJob() echo.HandlerFunc {
	return func(c echo.Context) error {
		jobID, err := uuid.Parse(c.Param("job_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid job id"})
		}
		job, err := h.projectUC.ReRenderJob(c.Request().Context(), jobID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, job)
	}
}

func (h *projectHandler) ListOutputs() echo.HandlerFunc {
	return func(c echo.Context) error {
		projectID, err := uuid.Parse(c.Param("project_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid project id"})
		}
		outputs, err := h.projectUC.ListOutputs(c.Request().Context(), projectID)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, outputs)
	}
}
