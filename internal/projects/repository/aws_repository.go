package repository

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/projects"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const presignExpiry = 60 * time.Minute

var videoFileRe = regexp.MustCompile(`.+\.(mp4|mkv|avi|mov|wmv|flv|webm|m4v|mpeg|mpg|3gp|ogv|vob|ts|mxf)$`)

type awsRepository struct {
	client        *s3.Client
	preSignClient *s3.PresignClient
}

func NewAwsRepository(awsClient *s3.Client, preSignClient *s3.PresignClient) projects.AWSRepository {
	return &awsRepository{
		client:        awsClient,
		preSignClient: preSignClient,
	}
}

func (a *awsRepository) GetPresignedUploadURL(ctx context.Context, input *models.UploadInput) (string, error) {
	if !videoFileRe.MatchString(input.Name) {
		return "", fmt.Errorf("invalid file format: %s", input.Name)
	}
	req, err := a.preSignClient.PresignPutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:        &input.BucketName,
			Key:           &input.Key,
			ContentLength: &input.Size,
			ContentType:   &input.MimeType,
		},
		s3.WithPresignExpires(presignExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign put object: %w", err)
	}
	return req.URL, nil
}

func (a *awsRepository) GetPresignedDownloadURL(ctx context.Context, bucket, key string) (string, error) {
	req, err := a.preSignClient.PresignGetObject(
		ctx,
		&s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		},
		s3.WithPresignExpires(presignExpiry),
	)
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}
	return req.URL, nil
}

func (a *awsRepository) PutObject(ctx context.Context, input models.UploadInput) (*s3.PutObjectOutput, error) {
	res, err := a.client.PutObject(
		ctx,
		&s3.PutObjectInput{
			Bucket:        &input.BucketName,
			Key:           &input.Key,
			ContentType:   &input.MimeType,
			ContentLength: &input.Size,
			Body:          input.File,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}
	return res, nil
}

func (a *awsRepository) RemoveObject(ctx context.Context, bucket, key string) error {
	if _, err := a.client.DeleteObject(
		ctx,
		&s3.DeleteObjectInput{
			Bucket: &bucket,
			Key:    &key,
		},
	); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
