package models

import (
	"time"

	"github.com/google/uuid"
)

type OutputKind string

const (
	OutputKindHighlight OutputKind = "highlight"
	OutputKindScene     OutputKind = "scene"
	OutputKindSummary   OutputKind = "summary"
	OutputKindStory     OutputKind = "story"
)

type OutputVideo struct {
	OutputID   uuid.UUID  `json:"output_id" db:"output_id" validate:"omitempty"`
	ProjectID  uuid.UUID  `json:"project_id" db:"project_id" validate:"omitempty"`
	JobID      uuid.UUID  `json:"job_id" db:"job_id" validate:"omitempty"`
	Kind       OutputKind `json:"kind" db:"kind" validate:"required"`
	FileName   string     `json:"file_name" db:"file_name" validate:"required,lte=255"`
	StorageKey string     `json:"storage_key" db:"storage_key" validate:"omitempty,lte=512"`
	Duration   float64    `json:"duration" db:"duration"`
	SceneIndex int        `json:"scene_index" db:"scene_index"`
	URL        string     `json:"url,omitempty" db:"-"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type OutputList struct {
	Outputs    []*OutputVideo `json:"outputs"`
	TotalCount int            `json:"total_count"`
}
