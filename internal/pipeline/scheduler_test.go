package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/models"

	"github.com/google/uuid"
)

type fakeQueueRepo struct {
	statuses  map[uuid.UUID]models.JobStatus
	errors    map[uuid.UUID]string
	recomputs int
}

func newFakeQueueRepo() *fakeQueueRepo {
	return &fakeQueueRepo{
		statuses: make(map[uuid.UUID]models.JobStatus),
		errors:   make(map[uuid.UUID]string),
	}
}

func (f *fakeQueueRepo) ClaimNextPending(ctx context.Context) (*models.Job, error) { return nil, nil }

func (f *fakeQueueRepo) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status models.JobStatus, errMsg string) error {
	f.statuses[jobID] = status
	f.errors[jobID] = errMsg
	return nil
}

func (f *fakeQueueRepo) UpdateJobProgress(ctx context.Context, jobID uuid.UUID, progress float64) error {
	return nil
}

func (f *fakeQueueRepo) UpdateJobSelection(ctx context.Context, jobID uuid.UUID, selection json.RawMessage) error {
	return nil
}

func (f *fakeQueueRepo) GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQueueRepo) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQueueRepo) GetSourceVideoByID(ctx context.Context, videoID uuid.UUID) (*models.SourceVideo, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeQueueRepo) UpdateSourceVideoProbe(ctx context.Context, videoID uuid.UUID, duration float64, audioCodec string) error {
	return nil
}

func (f *fakeQueueRepo) RecomputeProjectProgress(ctx context.Context, projectID uuid.UUID) error {
	f.recomputs++
	return nil
}

func (f *fakeQueueRepo) GetChunkResult(ctx context.Context, projectID uuid.UUID, chunkIndex int) (*models.ChunkResult, error) {
	return nil, nil
}

func (f *fakeQueueRepo) PutChunkResult(ctx context.Context, projectID uuid.UUID, result *models.ChunkResult) error {
	return nil
}

func (f *fakeQueueRepo) InsertOutput(ctx context.Context, output *models.OutputVideo) (*models.OutputVideo, error) {
	return output, nil
}

type fakeRedisRepo struct {
	events []*models.JobEvent
}

func (f *fakeRedisRepo) PublishJobEvent(ctx context.Context, event *models.JobEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRedisRepo) SetJobProgress(ctx context.Context, jobID string, status models.JobStatus, progress float64) error {
	return nil
}

func TestMarkFailedRecordsTruncatedError(t *testing.T) {
	repo := newFakeQueueRepo()
	redisRepo := &fakeRedisRepo{}
	cfg := &config.Config{}
	cfg.Worker.MaxErrorLength = 20

	s := NewScheduler(cfg, repo, redisRepo, nil, nopLogger{})
	job := &models.Job{JobID: uuid.New(), ProjectID: uuid.New(), Progress: 0.4}
	s.markFailed(job, errors.New(strings.Repeat("boom ", 20)))

	if repo.statuses[job.JobID] != models.JobStatusFailed {
		t.Fatalf("job must land in failed, got %q", repo.statuses[job.JobID])
	}
	if got := repo.errors[job.JobID]; len(got) != 20 {
		t.Fatalf("error must be truncated to 20 chars, got %d: %q", len(got), got)
	}
	if repo.recomputs != 1 {
		t.Fatalf("project progress must be recomputed once, got %d", repo.recomputs)
	}
	if len(redisRepo.events) != 1 {
		t.Fatalf("expected one failure event, got %d", len(redisRepo.events))
	}
	event := redisRepo.events[0]
	if event.Status != models.JobStatusFailed || event.Progress != 0.4 {
		t.Fatalf("unexpected failure event: %+v", event)
	}
}

func TestTruncateError(t *testing.T) {
	if got := truncateError("short", 100); got != "short" {
		t.Fatalf("short messages pass through, got %q", got)
	}
	if got := truncateError(strings.Repeat("x", 1000), 0); len(got) != defaultMaxErrorLength {
		t.Fatalf("zero limit falls back to the default, got %d chars", len(got))
	}
}
