package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/projects"

	"github.com/go-redis/redis/v8"
)

const (
	projectKeyPrefix = "projects:"
)

type projectRedisRepo struct {
	redisClient *redis.Client
	progressKey string
}

func NewProjectRedisRepo(redisClient *redis.Client, progressKey string) projects.RedisRepository {
	if progressKey == "" {
		progressKey = "jobs:progress:"
	}
	return &projectRedisRepo{
		redisClient: redisClient,
		progressKey: progressKey,
	}
}

func (p *projectRedisRepo) CacheProject(ctx context.Context, project *models.Project, ttlSeconds int) error {
	payload, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}
	key := projectKeyPrefix + project.ProjectID.String()
	if err = p.redisClient.Set(ctx, key, payload, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		return fmt.Errorf("failed to cache project: %w", err)
	}
	return nil
}

func (p *projectRedisRepo) GetCachedProject(ctx context.Context, projectID string) (*models.Project, error) {
	raw, err := p.redisClient.Get(ctx, projectKeyPrefix+projectID).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached project: %w", err)
	}
	project := &models.Project{}
	if err = json.Unmarshal(raw, project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached project: %w", err)
	}
	return project, nil
}

func (p *projectRedisRepo) InvalidateProject(ctx context.Context, projectID string) error {
	if err := p.redisClient.Del(ctx, projectKeyPrefix+projectID).Err(); err != nil {
		return fmt.Errorf("failed to invalidate project cache: %w", err)
	}
	return nil
}

// GetJobProgress reads the live progress hash the worker maintains.
// Missing keys mean the worker has not picked the job up yet.
func (p *projectRedisRepo) GetJobProgress(ctx context.Context, jobID string) (float64, error) {
	raw, err := p.redisClient.HGet(ctx, p.progressKey+jobID, "progress").Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get job progress: %w", err)
	}
	progress, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse job progress: %w", err)
	}
	return progress, nil
}
