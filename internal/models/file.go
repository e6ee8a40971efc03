package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// SourceVideo is an uploaded input file attached to a project.
type SourceVideo struct {
	VideoID    uuid.UUID `json:"video_id" db:"video_id" validate:"omitempty"`
	ProjectID  uuid.UUID `json:"project_id" db:"project_id" validate:"omitempty"`
	FileName   string    `json:"file_name" db:"file_name" validate:"required,lte=255"`
	FileSize   int64     `json:"file_size" db:"file_size" validate:"omitempty"`
	Duration   float64   `json:"duration" db:"duration" validate:"omitempty"`
	StorageKey string    `json:"storage_key" db:"storage_key" validate:"required,lte=512"`
	AudioCodec string    `json:"audio_codec" db:"audio_codec" validate:"omitempty,lte=20"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

type SourceVideoInput struct {
	FileName string `json:"file_name" validate:"required,lte=255"`
	FileSize int64  `json:"file_size" validate:"omitempty"`
	MimeType string `json:"mime_type" validate:"omitempty,lte=100"`
}

// UploadInput is what the S3 layer needs to presign or push an object.
type UploadInput struct {
	File       io.Reader `json:"-"`
	Name       string    `json:"name"`
	MimeType   string    `json:"mime_type"`
	Size       int64     `json:"size"`
	Key        string    `json:"key"`
	BucketName string    `json:"bucket_name"`
}
