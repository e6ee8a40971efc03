package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/reelmaker/reelmaker-backend/internal/models"

	"github.com/google/uuid"
)

func pendingJob(mode models.ProcessingMode) *models.Job {
	return &models.Job{JobID: uuid.New(), Mode: mode, Status: models.JobStatusPending}
}

func TestClaimFirstEligibleMovesPastLostRace(t *testing.T) {
	first := pendingJob(models.ModeBestScenes)
	second := pendingJob(models.ModeStoryOnly)

	var attempts []uuid.UUID
	claim := func(ctx context.Context, jobID uuid.UUID) (bool, error) {
		attempts = append(attempts, jobID)
		// Another worker wins the first row.
		return jobID != first.JobID, nil
	}

	got, err := claimFirstEligible(context.Background(), []*models.Job{first, second}, claim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.JobID != second.JobID {
		t.Fatalf("lost race must move to the next candidate, got %+v", got)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected claim attempts on both candidates, got %d", len(attempts))
	}
}

func TestClaimFirstEligibleSkipsForeignModes(t *testing.T) {
	foreign := pendingJob("transcode_720p")
	ours := pendingJob(models.ModeSummaryHybrid)

	var attempts []uuid.UUID
	claim := func(ctx context.Context, jobID uuid.UUID) (bool, error) {
		attempts = append(attempts, jobID)
		return true, nil
	}

	got, err := claimFirstEligible(context.Background(), []*models.Job{foreign, ours}, claim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.JobID != ours.JobID {
		t.Fatalf("expected the eligible job, got %+v", got)
	}
	if len(attempts) != 1 || attempts[0] != ours.JobID {
		t.Fatalf("foreign modes must not be claimed, attempts: %v", attempts)
	}
}

func TestClaimFirstEligibleAllRacesLost(t *testing.T) {
	jobs := []*models.Job{pendingJob(models.ModeBestScenes), pendingJob(models.ModeBestScenesSplit)}
	claim := func(ctx context.Context, jobID uuid.UUID) (bool, error) { return false, nil }

	got, err := claimFirstEligible(context.Background(), jobs, claim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no job when every race is lost, got %+v", got)
	}
}

func TestClaimFirstEligiblePropagatesClaimError(t *testing.T) {
	boom := errors.New("connection reset")
	claim := func(ctx context.Context, jobID uuid.UUID) (bool, error) { return false, boom }

	_, err := claimFirstEligible(context.Background(), []*models.Job{pendingJob(models.ModeBestScenes)}, claim)
	if !errors.Is(err, boom) {
		t.Fatalf("expected claim error to propagate, got %v", err)
	}
}
