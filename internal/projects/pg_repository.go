package projects

import (
	"context"
	"encoding/json"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"

	"github.com/google/uuid"
)

type Repository interface {
	CreateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	GetProjects(ctx context.Context, userID uuid.UUID, pq *utils.Pagination) (*models.ProjectList, error)
	UpdateProject(ctx context.Context, project *models.Project) (*models.Project, error)
	DeleteProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error

	CreateSourceVideo(ctx context.Context, video *models.SourceVideo) (*models.SourceVideo, error)
	GetSourceVideoByID(ctx context.Context, videoID uuid.UUID) (*models.SourceVideo, error)
	GetSourceVideos(ctx context.Context, projectID uuid.UUID) ([]*models.SourceVideo, error)

	CreateJob(ctx context.Context, job *models.Job) (*models.Job, error)
	GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error)
	GetJobsByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Job, error)
	SubmitJobSelection(ctx context.Context, jobID uuid.UUID, selection json.RawMessage) error
	RequeueJob(ctx context.Context, jobID uuid.UUID) error

	GetOutputs(ctx context.Context, projectID uuid.UUID) ([]*models.OutputVideo, error)
}
