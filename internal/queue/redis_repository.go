package queue

import (
	"context"

	"github.com/reelmaker/reelmaker-backend/internal/models"
)

// RedisRepository mirrors job state into Redis for live clients:
// progress hashes plus a pub/sub event channel. Reading the mirror back
// is the API side's concern, through the projects repositories.
type RedisRepository interface {
	PublishJobEvent(ctx context.Context, event *models.JobEvent) error
	SetJobProgress(ctx context.Context, jobID string, status models.JobStatus, progress float64) error
}
