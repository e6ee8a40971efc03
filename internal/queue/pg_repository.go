package queue

import (
	"context"
	"encoding/json"

	"github.com/reelmaker/reelmaker-backend/internal/models"

	"github.com/google/uuid"
)

// Repository is the worker-side Postgres store: job claiming, progress,
// the chunk-result cache and output registration.
type Repository interface {
	ClaimNextPending(ctx context.Context) (*models.Job, error)
	UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status models.JobStatus, errMsg string) error
	UpdateJobProgress(ctx context.Context, jobID uuid.UUID, progress float64) error
	UpdateJobSelection(ctx context.Context, jobID uuid.UUID, selection json.RawMessage) error
	GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error)

	GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	GetSourceVideoByID(ctx context.Context, videoID uuid.UUID) (*models.SourceVideo, error)
	UpdateSourceVideoProbe(ctx context.Context, videoID uuid.UUID, duration float64, audioCodec string) error
	RecomputeProjectProgress(ctx context.Context, projectID uuid.UUID) error

	GetChunkResult(ctx context.Context, projectID uuid.UUID, chunkIndex int) (*models.ChunkResult, error)
	PutChunkResult(ctx context.Context, projectID uuid.UUID, result *models.ChunkResult) error

	InsertOutput(ctx context.Context, output *models.OutputVideo) (*models.OutputVideo, error)
}
