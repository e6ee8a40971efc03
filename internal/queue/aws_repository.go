package queue

import "context"

// ObjectStorage moves source videos and rendered outputs between the
// worker's scratch disk and the object store.
type ObjectStorage interface {
	Download(ctx context.Context, bucket, key, destPath string) error
	Upload(ctx context.Context, localPath, bucket, key string) error
}
