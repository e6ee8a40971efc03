package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/queue"

	"github.com/go-redis/redis/v8"
)

const progressTTL = 24 * time.Hour

type queueRedisRepo struct {
	redisClient  *redis.Client
	eventChannel string
	progressKey  string
}

func NewQueueRedisRepo(redisClient *redis.Client, eventChannel, progressKey string) queue.RedisRepository {
	if eventChannel == "" {
		eventChannel = "jobs:events"
	}
	if progressKey == "" {
		progressKey = "jobs:progress:"
	}
	return &queueRedisRepo{
		redisClient:  redisClient,
		eventChannel: eventChannel,
		progressKey:  progressKey,
	}
}

func (q *queueRedisRepo) PublishJobEvent(ctx context.Context, event *models.JobEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal job event: %w", err)
	}
	if err = q.redisClient.Publish(ctx, q.eventChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}
	return nil
}

func (q *queueRedisRepo) SetJobProgress(ctx context.Context, jobID string, status models.JobStatus, progress float64) error {
	key := q.progressKey + jobID
	if err := q.redisClient.HSet(ctx, key,
		"status", string(status),
		"progress", strconv.FormatFloat(progress, 'f', 4, 64),
	).Err(); err != nil {
		return fmt.Errorf("failed to set job progress: %w", err)
	}
	if err := q.redisClient.Expire(ctx, key, progressTTL).Err(); err != nil {
		return fmt.Errorf("failed to expire job progress: %w", err)
	}
	return nil
}
