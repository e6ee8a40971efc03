package projects

import (
	"context"

	"github.com/reelmaker/reelmaker-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type AWSRepository interface {
	GetPresignedUploadURL(ctx context.Context, input *models.UploadInput) (string, error)
	GetPresignedDownloadURL(ctx context.Context, bucket, key string) (string, error)
	PutObject(ctx context.Context, input models.UploadInput) (*s3.PutObjectOutput, error)
	RemoveObject(ctx context.Context, bucket, key string) error
}
