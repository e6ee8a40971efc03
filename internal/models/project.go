package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusDraft      ProjectStatus = "draft"
	ProjectStatusProcessing ProjectStatus = "processing"
	ProjectStatusReady      ProjectStatus = "ready"
	ProjectStatusFailed     ProjectStatus = "failed"
)

type Project struct {
	ProjectID   uuid.UUID       `json:"project_id" db:"project_id" validate:"omitempty"`
	UserID      uuid.UUID       `json:"user_id" db:"user_id" validate:"omitempty"`
	Title       string          `json:"title" db:"title" validate:"required,lte=255"`
	ChannelName string          `json:"channel_name" db:"channel_name" validate:"omitempty,lte=100"`
	Status      ProjectStatus   `json:"status" db:"status" validate:"omitempty"`
	Progress    float64         `json:"progress" db:"progress"`
	Settings    json.RawMessage `json:"settings" db:"settings" validate:"omitempty"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

type ProjectList struct {
	Projects   []*Project `json:"projects"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	HasMore    bool       `json:"has_more"`
}

type ProjectUpdateInput struct {
	Title       string          `json:"title" validate:"omitempty,lte=255"`
	ChannelName string          `json:"channel_name" validate:"omitempty,lte=100"`
	Settings    json.RawMessage `json:"settings" validate:"omitempty"`
}
