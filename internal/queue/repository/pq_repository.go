package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/queue"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type queueRepo struct {
	db         *sqlx.DB
	claimBatch int
}

func NewQueueRepo(db *sqlx.DB, claimBatch int) queue.Repository {
	if claimBatch <= 0 {
		claimBatch = 5
	}
	return &queueRepo{
		db:         db,
		claimBatch: claimBatch,
	}
}

// ClaimNextPending picks the oldest eligible pending jobs and tries to
// flip one of them to running. The conditional UPDATE makes the claim
// safe against concurrent workers: whoever flips the row first wins,
// everyone else moves on to the next candidate. Returns nil when the
// queue is empty.
func (q *queueRepo) ClaimNextPending(ctx context.Context) (*models.Job, error) {
	rows, err := q.db.QueryxContext(ctx, claimCandidatesQuery, q.claimBatch)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	defer rows.Close()
	var candidates []*models.Job
	for rows.Next() {
		var job models.Job
		if err = rows.StructScan(&job); err != nil {
			return nil, fmt.Errorf("failed to scan pending job: %w", err)
		}
		candidates = append(candidates, &job)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan pending jobs: %w", err)
	}
	claimed, err := claimFirstEligible(ctx, candidates, q.tryClaim)
	if err != nil || claimed == nil {
		return nil, err
	}
	return q.GetJobByID(ctx, claimed.JobID)
}

// claimFunc performs the conditional pending to running flip and
// reports whether this worker won the row.
type claimFunc func(ctx context.Context, jobID uuid.UUID) (bool, error)

// claimFirstEligible walks candidates in queue order, skipping modes
// this worker does not handle and rows another worker flipped first.
func claimFirstEligible(ctx context.Context, candidates []*models.Job, claim claimFunc) (*models.Job, error) {
	for _, job := range candidates {
		if !job.Claimable() {
			continue
		}
		won, err := claim(ctx, job.JobID)
		if err != nil {
			return nil, err
		}
		if !won {
			// Another worker got here first.
			continue
		}
		return job, nil
	}
	return nil, nil
}

func (q *queueRepo) tryClaim(ctx context.Context, jobID uuid.UUID) (bool, error) {
	res, err := q.db.ExecContext(ctx, claimJobQuery, jobID)
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return affected > 0, nil
}

func (q *queueRepo) UpdateJobStatus(ctx context.Context, jobID uuid.UUID, status models.JobStatus, errMsg string) error {
	if _, err := q.db.ExecContext(ctx, updateJobStatusQuery, jobID, status, errMsg); err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

func (q *queueRepo) UpdateJobProgress(ctx context.Context, jobID uuid.UUID, progress float64) error {
	if _, err := q.db.ExecContext(ctx, updateJobProgressQuery, jobID, progress); err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}
	return nil
}

func (q *queueRepo) UpdateJobSelection(ctx context.Context, jobID uuid.UUID, selection json.RawMessage) error {
	if _, err := q.db.ExecContext(ctx, updateJobSelectionQuery, jobID, []byte(selection)); err != nil {
		return fmt.Errorf("failed to update job selection: %w", err)
	}
	return nil
}

func (q *queueRepo) GetJobByID(ctx context.Context, jobID uuid.UUID) (*models.Job, error) {
	job := &models.Job{}
	if err := q.db.GetContext(ctx, job, getJobByIDQuery, jobID); err != nil {
		return nil, fmt.Errorf("failed to get job by id: %w", err)
	}
	return job, nil
}

func (q *queueRepo) GetProjectByID(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	if err := q.db.GetContext(ctx, project, getProjectByIDQuery, projectID); err != nil {
		return nil, fmt.Errorf("failed to get project by id: %w", err)
	}
	return project, nil
}

func (q *queueRepo) GetSourceVideoByID(ctx context.Context, videoID uuid.UUID) (*models.SourceVideo, error) {
	video := &models.SourceVideo{}
	if err := q.db.GetContext(ctx, video, getSourceVideoByIDQuery, videoID); err != nil {
		return nil, fmt.Errorf("failed to get source video by id: %w", err)
	}
	return video, nil
}

func (q *queueRepo) UpdateSourceVideoProbe(ctx context.Context, videoID uuid.UUID, duration float64, audioCodec string) error {
	if _, err := q.db.ExecContext(ctx, updateSourceVideoProbeQuery, videoID, duration, audioCodec); err != nil {
		return fmt.Errorf("failed to update source video probe: %w", err)
	}
	return nil
}

func (q *queueRepo) RecomputeProjectProgress(ctx context.Context, projectID uuid.UUID) error {
	if _, err := q.db.ExecContext(ctx, recomputeProjectProgressQuery, projectID); err != nil {
		return fmt.Errorf("failed to recompute project progress: %w", err)
	}
	return nil
}

func (q *queueRepo) GetChunkResult(ctx context.Context, projectID uuid.UUID, chunkIndex int) (*models.ChunkResult, error) {
	var payload []byte
	if err := q.db.GetContext(ctx, &payload, getChunkResultQuery, projectID, chunkIndex); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chunk result: %w", err)
	}
	result := &models.ChunkResult{}
	if err := json.Unmarshal(payload, result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chunk result: %w", err)
	}
	return result, nil
}

func (q *queueRepo) PutChunkResult(ctx context.Context, projectID uuid.UUID, result *models.ChunkResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal chunk result: %w", err)
	}
	if _, err = q.db.ExecContext(ctx, upsertChunkResultQuery, projectID, result.ChunkIndex, payload); err != nil {
		return fmt.Errorf("failed to store chunk result: %w", err)
	}
	return nil
}

func (q *queueRepo) InsertOutput(ctx context.Context, output *models.OutputVideo) (*models.OutputVideo, error) {
	created := &models.OutputVideo{}
	if err := q.db.QueryRowxContext(
		ctx,
		insertOutputQuery,
		output.ProjectID,
		output.JobID,
		output.Kind,
		output.FileName,
		output.StorageKey,
		output.Duration,
		output.SceneIndex,
	).StructScan(created); err != nil {
		return nil, fmt.Errorf("failed to insert output video: %w", err)
	}
	return created, nil
}
