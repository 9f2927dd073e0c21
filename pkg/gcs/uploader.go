package gcs

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"

	"cloud.google.com/go/storage"
)

// Uploader writes public assets (blog images) into a Cloud Storage bucket.
type Uploader struct {
	bucket     *storage.BucketHandle
	bucketName string
}

func NewUploader(bucket *storage.BucketHandle, bucketName string) *Uploader {
	return &Uploader{bucket: bucket, bucketName: bucketName}
}

// Upload stores r under objectName and returns the object's public URL.
func (u *Uploader) Upload(ctx context.Context, objectName, contentType string, r io.Reader) (string, error) {
	// Cancelling the writer's context is the only way to abort an upload; Close would commit it
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := u.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=31536000"

	if _, err := io.Copy(w, r); err != nil {
		cancel()
		return "", fmt.Errorf("failed to write to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize GCS object %s: %w", objectName, err)
	}

	log.Printf("[GCS] Uploaded %s (%d bytes)", objectName, w.Attrs().Size)
	return PublicURL(u.bucketName, objectName), nil
}

// PublicURL is the storage.googleapis.com URL of an object.
func PublicURL(bucketName, objectName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, (&url.URL{Path: objectName}).EscapedPath())
}
