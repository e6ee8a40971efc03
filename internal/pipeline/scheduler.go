package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/queue"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"
	"github.com/reelmaker/reelmaker-backend/pkg/utils"
)

const (
	defaultPollIntervalMs = 2000
	defaultMaxErrorLength = 500
)

// Scheduler polls the queue and hands claimed jobs to the runner.
type Scheduler struct {
	cfg       *config.Config
	repo      queue.Repository
	redisRepo queue.RedisRepository
	runner    *Runner
	logger    logger.Logger
	wg        sync.WaitGroup
}

func NewScheduler(cfg *config.Config, repo queue.Repository, redisRepo queue.RedisRepository, runner *Runner, log logger.Logger) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		repo:      repo,
		redisRepo: redisRepo,
		runner:    runner,
		logger:    log,
	}
}

// Run starts the configured number of polling workers and blocks until
// the context is cancelled and all in-flight jobs have finished.
func (s *Scheduler) Run(ctx context.Context) {
	workers := s.cfg.Worker.Concurrency
	if workers <= 0 {
		workers = 1
	}
	s.logger.Infof("starting %d pipeline workers", workers)
	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}
	s.wg.Wait()
	s.logger.Info("all pipeline workers stopped")
}

func (s *Scheduler) worker(ctx context.Context, id int) {
	defer s.wg.Done()
	interval := time.Duration(s.cfg.Worker.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = defaultPollIntervalMs * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ok, usage := utils.CheckCPUUsage(s.cfg.Worker.MaxCPUUsage); !ok {
				s.logger.Infof("worker %d skipping poll, cpu usage %.1f%%", id, usage)
				continue
			}
			s.pollOnce(ctx, id)
		}
	}
}

func (s *Scheduler) pollOnce(ctx context.Context, id int) {
	job, err := s.repo.ClaimNextPending(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Errorf("worker %d failed to claim job: %v", id, err)
		}
		return
	}
	if job == nil {
		return
	}
	s.logger.Infof("worker %d claimed job %s mode %s", id, job.JobID, job.Mode)
	if err = s.runner.ProcessJob(ctx, job); err != nil {
		s.markFailed(job, err)
		return
	}
	s.logger.Infof("worker %d finished job %s", id, job.JobID)
}

// markFailed records the failure with a fresh context so a cancelled
// job still lands in a terminal state.
func (s *Scheduler) markFailed(job *models.Job, cause error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	msg := truncateError(cause.Error(), s.cfg.Worker.MaxErrorLength)
	s.logger.Errorf("job %s failed: %v", job.JobID, cause)
	if err := s.repo.UpdateJobStatus(ctx, job.JobID, models.JobStatusFailed, msg); err != nil {
		s.logger.Errorf("failed to mark job %s failed: %v", job.JobID, err)
	}
	if err := s.repo.RecomputeProjectProgress(ctx, job.ProjectID); err != nil {
		s.logger.Warnf("failed to recompute project progress for %s: %v", job.ProjectID, err)
	}
	event := &models.JobEvent{
		JobID:     job.JobID.String(),
		ProjectID: job.ProjectID.String(),
		Status:    models.JobStatusFailed,
		Progress:  job.Progress,
		Error:     msg,
	}
	if err := s.redisRepo.PublishJobEvent(ctx, event); err != nil {
		s.logger.Warnf("failed to publish failure event for %s: %v", job.JobID, err)
	}
	if err := s.redisRepo.SetJobProgress(ctx, job.JobID.String(), models.JobStatusFailed, job.Progress); err != nil {
		s.logger.Warnf("failed to mirror failure for %s: %v", job.JobID, err)
	}
}

func truncateError(msg string, limit int) string {
	if limit <= 0 {
		limit = defaultMaxErrorLength
	}
	if len(msg) <= limit {
		return msg
	}
	return msg[:limit]
}
