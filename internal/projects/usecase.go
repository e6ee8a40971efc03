package projects

import (
	"context"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"

	"github.com/google/uuid"
)

type UseCase interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	ListProjects(ctx context.Context, pq *utils.Pagination) (*models.ProjectList, error)
	UpdateProject(ctx context.Context, projectID uuid.UUID, input *models.ProjectUpdateInput) (*models.Project, error)
	DeleteProject(ctx context.Context, projectID uuid.UUID) error

	GetUploadURL(ctx context.Context, projectID uuid.UUID, input *models.SourceVideoInput) (string, *models.SourceVideo, error)
	GetSourceVideos(ctx context.Context, projectID uuid.UUID) ([]*models.SourceVideo, error)

	CreateJob(ctx context.Context, projectID uuid.UUID, input *models.JobCreateInput) (*models.Job, error)
	GetJobStatus(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	ListJobs(ctx context.Context, projectID uuid.UUID) ([]*models.Job, error)
	SubmitSelection(ctx context.Context, jobID uuid.UUID, input *models.SelectionInput) (*models.Job, error)
	ReRenderJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error)

	ListOutputs(ctx context.Context, projectID uuid.UUID) (*models.OutputList, error)
}
