package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobStatusPending           JobStatus = "pending"
	JobStatusRunning           JobStatus = "running"
	JobStatusAwaitingSelection JobStatus = "awaiting_selection"
	JobStatusCompleted         JobStatus = "completed"
	JobStatusFailed            JobStatus = "failed"
)

type ProcessingMode string

const (
	ModeBestScenes      ProcessingMode = "ai_best_scenes"
	ModeBestScenesSplit ProcessingMode = "ai_best_scenes_split"
	ModeSummaryHybrid   ProcessingMode = "ai_summary_hybrid"
	ModeStoryOnly       ProcessingMode = "ai_story_only"
)

// Job is a row in the queue_jobs table.
type Job struct {
	JobID      uuid.UUID       `json:"job_id" db:"job_id" validate:"omitempty"`
	ProjectID  uuid.UUID       `json:"project_id" db:"project_id" validate:"omitempty"`
	VideoID    uuid.UUID       `json:"video_id" db:"video_id" validate:"omitempty"`
	Mode       ProcessingMode  `json:"mode" db:"mode" validate:"required"`
	Category   string          `json:"category" db:"category" validate:"omitempty,lte=30"`
	Status     JobStatus       `json:"status" db:"status" validate:"omitempty"`
	Progress   float64         `json:"progress" db:"progress"`
	Error      sql.NullString  `json:"error,omitempty" db:"error"`
	Selection  json.RawMessage `json:"selection,omitempty" db:"selection"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	StartedAt  sql.NullTime    `json:"started_at,omitempty" db:"started_at"`
	FinishedAt sql.NullTime    `json:"finished_at,omitempty" db:"finished_at"`
}

// Claimable reports whether this worker handles the job's mode.
func (j *Job) Claimable() bool {
	if j.Mode == ModeBestScenes || j.Category == "summary" {
		return true
	}
	return len(j.Mode) > 3 && j.Mode[:3] == "ai_"
}

type JobCreateInput struct {
	VideoID  uuid.UUID       `json:"video_id" validate:"required"`
	Mode     ProcessingMode  `json:"mode" validate:"required"`
	Category string          `json:"category" validate:"omitempty,lte=30"`
	Settings json.RawMessage `json:"settings" validate:"omitempty"`
}

// SelectionInput carries the user's picked segments for a hybrid
// summary job that paused at awaiting_selection.
type SelectionInput struct {
	Segments []SelectedSegment `json:"segments" validate:"required,min=1,dive"`
}

// JobEvent is published on Redis whenever a job changes state.
type JobEvent struct {
	JobID     string    `json:"job_id"`
	ProjectID string    `json:"project_id"`
	Status    JobStatus `json:"status"`
	Progress  float64   `json:"progress"`
	Error     string    `json:"error,omitempty"`
}

type SelectedSegment struct {
	StartSec  float64 `json:"start_sec" validate:"gte=0"`
	EndSec    float64 `json:"end_sec" validate:"gtfield=StartSec"`
	Narration string  `json:"narration" validate:"omitempty"`
}
