package sync

import (
	"bytes"
	"context"
	"fmt"

	"bill-reconciler/core/reconcile"
	"bill-reconciler/core/storage"

	"github.com/minio/minio-go/v7"
)

// Archiver uploads run reports to object storage, one object per run id.
type Archiver struct {
	client storage.Client
	bucket string
}

// NewArchiver creates an archiver writing into the given bucket.
func NewArchiver(client storage.Client, bucket string) *Archiver {
	return &Archiver{client: client, bucket: bucket}
}

// Store serializes the report and uploads it under reports/<runID>.json,
// creating the bucket on first use.
func (a *Archiver) Store(ctx context.Context, runID string, report *reconcile.Report) error {
	data, err := report.JSON()
	if err != nil {
		return err
	}

	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to check archive bucket: %w", err)
	}
	if !exists {
		if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create archive bucket: %w", err)
		}
	}

	objectName := fmt.Sprintf("reports/%s.json", runID)
	_, err = a.client.PutObject(ctx, a.bucket, objectName,
		bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		return fmt.Errorf("failed to upload report %s: %w", objectName, err)
	}
	return nil
}
