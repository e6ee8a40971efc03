package projects

import (
	"context"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

// RedisRepository caches project documents and reads the live job
// progress mirror maintained by the worker.
type RedisRepository interface {
	CacheProject(ctx context.Context, project *models.Project, ttlSeconds int) error
	GetCachedProject(ctx context.Context, projectID string) (*models.Project, error)
	InvalidateProject(ctx context.Context, projectID string) error
	GetJobProgress(ctx context.Context, jobID string) (float64, error)
}
