package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/projects"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type projectRepo struct {
	db *sqlx.DB
}

func NewProjectRepo(db *sqlx.DB) projects.Repository {
	return &projectRepo{
		db: db,
	}
}

func (p *projectRepo) CreateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	created := &models.Project{}
	if err := p.db.QueryRowxContext(
		ctx,
		createProjectQuery,
		project.UserID,
		project.Title,
		project.ChannelName,
		[]byte(project.Settings),
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return created, nil
}

func (p *projectRepo) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	if err := p.db.GetContext(ctx, project, getProjectByIDQuery, projectID); err != nil {
		return nil, fmt.Errorf("failed to get project by id: %w", err)
	}
	return project, nil
}

func (p *projectRepo) GetProjects(ctx context.Context, userID uuid.UUID, pq *utils.Pagination) (*models.ProjectList, error) {
	var totalCount int
	if err := p.db.GetContext(ctx, &totalCount, getTotalProjectsQuery, userID); err != nil {
		return nil, fmt.Errorf("failed to get total projects count: %w", err)
	}
	if totalCount == 0 {
		return &models.ProjectList{
			Projects:   make([]*models.Project, 0),
			TotalCount: 0,
			Page:       pq.GetPage(),
			PageSize:   pq.GetSize(),
			HasMore:    false,
		}, nil
	}
	rows, err := p.db.QueryxContext(ctx, getProjectsQuery, userID, pq.GetOffset(), pq.GetLimit())
	if err != nil {
		return nil, fmt.Errorf("failed to get projects: %w", err)
	}
	defer rows.Close()
	list := make([]*models.Project, 0, pq.GetSize())
	for rows.Next() {
		var project models.Project
		if err = rows.StructScan(&project); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		list = append(list, &project)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan projects: %w", err)
	}
	return &models.ProjectList{
		Projects:   list,
		TotalCount: totalCount,
		Page:       pq.GetPage(),
		PageSize:   pq.GetSize(),
		HasMore:    utils.GetHasMore(pq.GetPage(), totalCount, pq.GetSize()),
	}, nil
}

func (p *projectRepo) UpdateProject(ctx context.Context, project *models.Project) (*models.Project, error) {
	updated := &models.Project{}
	if err := p.db.QueryRowxContext(
		ctx,
		updateProjectQuery,
		project.Title,
		project.ChannelName,
		[]byte(project.Settings),
		project.ProjectID,
	).StructScan(updated); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	return updated, nil
}

func (p *projectRepo) DeleteProject(ctx context.Context, userID uuid.UUID, projectID uuid.UUID) error {
	result, err := p.db.ExecContext(ctx, deleteProjectQuery, projectID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (p *projectRepo) CreateSourceVideo(ctx context.Context, video *models.SourceVideo) (*models.SourceVideo, error) {
	created := &models.SourceVideo{}
	if err := p.db.QueryRowxContext(
		ctx,
		createSourceVideoQuery,
		video.ProjectID,
		video.FileName,
		video.FileSize,
		video.StorageKey,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create source video: %w", err)
	}
	return created, nil
}

func (p *projectRepo) GetSourceVideoByID(ctx context.Context, videoID uuid.UUID) (*models.SourceVideo, error) {
	video := &models.SourceVideo{}
	if err := p.db.GetContext(ctx, video, getSourceVideoByIDQuery, videoID); err != nil {
		return nil, fmt.Errorf("failed to get source video: %w", err)
	}
	return video, nil
}

func (p *projectRepo) GetSourceVideos(ctx context.Context, projectID uuid.UUID) ([]*models.SourceVideo, error) {
	videos := make([]*models.SourceVideo, 0)
	if err := p.db.SelectContext(ctx, &videos, getSourceVideosQuery, projectID); err != nil {
		return nil, fmt.Errorf("failed to get source videos: %w", err)
	}
	return videos, nil
}

func (p *projectRepo) CreateJob(ctx context.Context, job *models.Job) (*models.Job, error) {
	created := &models.Job{}
	if err := p.db.QueryRowxContext(
		ctx,
		createJobQuery,
		job.ProjectID,
		job.VideoID,
		job.Mode,
		job.Category,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return created, nil
}

func (p *projectRepo) GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job := &models.Job{}
	if err := p.db.GetContext(ctx, job, getJobByIDQuery, jobID); err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (p *projectRepo) GetJobsByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Job, error) {
	jobs := make([]*models.Job, 0)
	if err := p.db.SelectContext(ctx, &jobs, getJobsByProjectQuery, projectID); err != nil {
		return nil, fmt.Errorf("failed to get jobs: %w", err)
	}
	return jobs, nil
}

// SubmitJobSelection stores the user's picked segments and requeues the
// job. The status guard keeps a double submit from restarting a job
// that already moved on.
func (p *projectRepo) SubmitJobSelection(ctx context.Context, jobID uuid.UUID, selection json.RawMessage) error {
	result, err := p.db.ExecContext(ctx, submitJobSelectionQuery, jobID, []byte(selection))
	if err != nil {
		return fmt.Errorf("failed to submit selection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job is not awaiting selection")
	}
	return nil
}

func (p *projectRepo) RequeueJob(ctx context.Context, jobID uuid.UUID) error {
	result, err := p.db.ExecContext(ctx, requeueJobQuery, jobID)
	if err != nil {
		return fmt.Errorf("failed to requeue job: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job is not in a terminal state")
	}
	return nil
}

func (p *projectRepo) GetOutputs(ctx context.Context, projectID uuid.UUID) ([]*models.OutputVideo, error) {
	outputs := make([]*models.OutputVideo, 0)
	if err := p.db.SelectContext(ctx, &outputs, getOutputsQuery, projectID); err != nil {
		return nil, fmt.Errorf("failed to get outputs: %w", err)
	}
	return outputs, nil
}
