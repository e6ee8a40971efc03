package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/projects"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"

	"github.com/google/uuid"
)

const projectCacheSeconds = 600

type projectUC struct {
	cfg         *config.Config
	projectRepo projects.Repository
	redisRepo   projects.RedisRepository
	awsRepo     projects.AWSRepository
	logger      logger.Logger
}

func NewProjectUseCase(
	cfg *config.Config,
	projectRepo projects.Repository,
	redisRepo projects.RedisRepository,
	awsRepo projects.AWSRepository,
	log logger.Logger,
) projects.UseCase {
	return &projectUC{
		cfg:         cfg,
		projectRepo: projectRepo,
		redisRepo:   redisRepo,
		awsRepo:     awsRepo,
		logger:      log,
	}
}

// ownedProject loads a project and verifies the caller owns it. Admins
// pass regardless of ownership.
func (p *projectUC) ownedProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	project, err := p.projectRepo.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.UserID != user.UserID && user.Role != models.AdminRole {
		return nil, fmt.Errorf("project does not belong to user")
	}
	return project, nil
}

func (p *projectUC) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		p.logger.Errorf("CreateProject - GetUserFromCtx: %v", err)
		return nil, err
	}
	project.UserID = user.UserID
	if err = utils.ValidateStruct(ctx, project); err != nil {
		return nil, fmt.Errorf("invalid input: %v", err)
	}
	if len(project.Settings) > 0 {
		var settings models.RenderSettings
		if err = json.Unmarshal(project.Settings, &settings); err != nil {
			return nil, fmt.Errorf("invalid settings document: %v", err)
		}
	}
	created, err := p.projectRepo.CreateProject(ctx, project)
	if err != nil {
		p.logger.Errorf("CreateProject - repo error: %v", err)
		return nil, err
	}
	return created, nil
}

func (p *projectUC) GetProject(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	cached, err := p.redisRepo.GetCachedProject(ctx, projectID.String())
	if err != nil {
		p.logger.Warnf("GetProject - cache read failed: %v", err)
	}
	if cached != nil {
		user, uErr := utils.GetUserFromCtx(ctx)
		if uErr != nil {
			return nil, uErr
		}
		if cached.UserID != user.UserID && user.Role != models.AdminRole {
			return nil, fmt.Errorf("project does not belong to user")
		}
		return cached, nil
	}
	project, err := p.ownedProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err = p.redisRepo.CacheProject(ctx, project, projectCacheSeconds); err != nil {
		p.logger.Warnf("GetProject - cache write failed: %v", err)
	}
	return project, nil
}

func (p *projectUC) ListProjects(ctx context.Context, pq *utils.Pagination) (*models.ProjectList, error) {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	return p.projectRepo.GetProjects(ctx, user.UserID, pq)
}

func (p *projectUC) UpdateProject(ctx context.Context, projectID uuid.UUID, input *models.ProjectUpdateInput) (*models.Project, error) {
	project, err := p.ownedProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		return nil, fmt.Errorf("invalid input: %v", err)
	}
	if len(input.Settings) > 0 {
		var settings models.RenderSettings
		if err = json.Unmarshal(input.Settings, &settings); err != nil {
			return nil, fmt.Errorf("invalid settings document: %v", err)
		}
		project.Settings = input.Settings
	}
	if input.Title != "" {
		project.Title = input.Title
	}
	if input.ChannelName != "" {
		project.ChannelName = input.ChannelName
	}
	updated, err := p.projectRepo.UpdateProject(ctx, project)
	if err != nil {
		p.logger.Errorf("UpdateProject - repo error: %v", err)
		return nil, err
	}
	if err = p.redisRepo.InvalidateProject(ctx, projectID.String()); err != nil {
		p.logger.Warnf("UpdateProject - cache invalidation failed: %v", err)
	}
	return updated, nil
}

func (p *projectUC) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	user, err := utils.GetUserFromCtx(ctx)
	if err != nil {
		return err
	}
	if err = p.projectRepo.DeleteProject(ctx, user.UserID, projectID); err != nil {
		return fmt.Errorf("failed to delete project: %v", err)
	}
	if err = p.redisRepo.InvalidateProject(ctx, projectID.String()); err != nil {
		p.logger.Warnf("DeleteProject - cache invalidation failed: %v", err)
	}
	return nil
}

// GetUploadURL registers a source video and, when object storage is
// enabled, returns a presigned PUT URL for the client to upload to.
// Without object storage the file goes to the shared upload directory
// under the returned storage key.
func (p *projectUC) GetUploadURL(ctx context.Context, projectID uuid.UUID, input *models.SourceVideoInput) (string, *models.SourceVideo, error) {
	project, err := p.ownedProject(ctx, projectID)
	if err != nil {
		return "", nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		return "", nil, fmt.Errorf("invalid input: %v", err)
	}

	storageKey := fmt.Sprintf("uploads/%s/%s", project.ProjectID, input.FileName)
	video := &models.SourceVideo{
		ProjectID:  project.ProjectID,
		FileName:   input.FileName,
		FileSize:   input.FileSize,
		StorageKey: storageKey,
	}
	video, err = p.projectRepo.CreateSourceVideo(ctx, video)
	if err != nil {
		p.logger.Errorf("GetUploadURL - CreateSourceVideo error: %v", err)
		return "", nil, err
	}

	if !p.cfg.S3.Enabled {
		return "", video, nil
	}
	url, err := p.awsRepo.GetPresignedUploadURL(ctx, &models.UploadInput{
		Name:       input.FileName,
		MimeType:   input.MimeType,
		Size:       input.FileSize,
		Key:        storageKey,
		BucketName: p.cfg.S3.UploadBucket,
	})
	if err != nil {
		p.logger.Errorf("GetUploadURL - presign error: %v", err)
		return "", nil, fmt.Errorf("failed to generate presigned URL: %v", err)
	}
	return url, video, nil
}

func (p *projectUC) GetSourceVideos(ctx context.Context, projectID uuid.UUID) ([]*models.SourceVideo, error) {
	if _, err := p.ownedProject(ctx, projectID); err != nil {
		return nil, err
	}
	return p.projectRepo.GetSourceVideos(ctx, projectID)
}

func (p *projectUC) CreateJob(ctx context.Context, projectID uuid.UUID, input *models.JobCreateInput) (*models.Job, error) {
	project, err := p.ownedProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		return nil, fmt.Errorf("invalid input: %v", err)
	}
	switch input.Mode {
	case models.ModeBestScenes, models.ModeBestScenesSplit, models.ModeSummaryHybrid, models.ModeStoryOnly:
	default:
		return nil, fmt.Errorf("unsupported mode: %s", input.Mode)
	}

	video, err := p.projectRepo.GetSourceVideoByID(ctx, input.VideoID)
	if err != nil {
		return nil, fmt.Errorf("source video not found: %v", err)
	}
	if video.ProjectID != project.ProjectID {
		return nil, fmt.Errorf("source video belongs to a different project")
	}

	if len(input.Settings) > 0 {
		var settings models.RenderSettings
		if err = json.Unmarshal(input.Settings, &settings); err != nil {
			return nil, fmt.Errorf("invalid settings document: %v", err)
		}
		project.Settings = input.Settings
		if _, err = p.projectRepo.UpdateProject(ctx, project); err != nil {
			return nil, fmt.Errorf("failed to store job settings: %v", err)
		}
		if err = p.redisRepo.InvalidateProject(ctx, projectID.String()); err != nil {
			p.logger.Warnf("CreateJob - cache invalidation failed: %v", err)
		}
	}

	job := &models.Job{
		ProjectID: project.ProjectID,
		VideoID:   input.VideoID,
		Mode:      input.Mode,
		Category:  input.Category,
	}
	created, err := p.projectRepo.CreateJob(ctx, job)
	if err != nil {
		p.logger.Errorf("CreateJob - repo error: %v", err)
		return nil, err
	}
	return created, nil
}

func (p *projectUC) GetJobStatus(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := p.projectRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err = p.ownedProject(ctx, job.ProjectID); err != nil {
		return nil, err
	}
	// The Redis mirror is fresher than the row while a job runs.
	if job.Status == models.JobStatusRunning {
		if progress, pErr := p.redisRepo.GetJobProgress(ctx, jobID.String()); pErr == nil && progress > job.Progress {
			job.Progress = progress
		}
	}
	return job, nil
}

func (p *projectUC) ListJobs(ctx context.Context, projectID uuid.UUID) ([]*models.Job, error) {
	if _, err := p.ownedProject(ctx, projectID); err != nil {
		return nil, err
	}
	return p.projectRepo.GetJobsByProject(ctx, projectID)
}

func (p *projectUC) SubmitSelection(ctx context.Context, jobID uuid.UUID, input *models.SelectionInput) (*models.Job, error) {
	job, err := p.projectRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err = p.ownedProject(ctx, job.ProjectID); err != nil {
		return nil, err
	}
	if err = utils.ValidateStruct(ctx, input); err != nil {
		return nil, fmt.Errorf("invalid input: %v", err)
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal selection: %v", err)
	}
	if err = p.projectRepo.SubmitJobSelection(ctx, jobID, payload); err != nil {
		return nil, err
	}
	return p.projectRepo.GetJobByID(ctx, jobID)
}

func (p *projectUC) ReRenderJob(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job, err := p.projectRepo.GetJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if _, err = p.ownedProject(ctx, job.ProjectID); err != nil {
		return nil, err
	}
	if err = p.projectRepo.RequeueJob(ctx, jobID); err != nil {
		return nil, err
	}
	return p.projectRepo.GetJobByID(ctx, jobID)
}

func (p *projectUC) ListOutputs(ctx context.Context, projectID uuid.UUID) (*models.OutputList, error) {
	if _, err := p.ownedProject(ctx, projectID); err != nil {
		return nil, err
	}
	outputs, err := p.projectRepo.GetOutputs(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p.cfg.S3.Enabled {
		for _, output := range outputs {
			url, uErr := p.awsRepo.GetPresignedDownloadURL(ctx, p.cfg.S3.OutputBucket, output.StorageKey)
			if uErr != nil {
				p.logger.Warnf("ListOutputs - presign failed for %s: %v", output.StorageKey, uErr)
				continue
			}
			output.URL = url
		}
	}
	return &models.OutputList{
		Outputs:    outputs,
		TotalCount: len(outputs),
	}, nil
}
