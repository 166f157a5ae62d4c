package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/config"
)

// minioArchive stores datasets in an S3-compatible bucket.
type minioArchive struct {
	client *minio.Client
	bucket string
}

// NewMinioArchive connects to the configured endpoint and creates the bucket
// on first use.
func NewMinioArchive(ctx context.Context, cfg *config.Config) (Archive, error) {
	client, err := minio.New(cfg.S3Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		Secure: cfg.S3UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create archive client: %w", err)
	}

	a := &minioArchive{client: client, bucket: cfg.S3BucketName}
	if err := a.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *minioArchive) ensureBucket(ctx context.Context) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("failed to look up bucket %q: %w", a.bucket, err)
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %q: %w", a.bucket, err)
	}
	return nil
}

func (a *minioArchive) Put(ctx context.Context, obj *Object) error {
	opts := minio.PutObjectOptions{
		ContentType:        obj.ContentType,
		ContentDisposition: mime.FormatMediaType("attachment", map[string]string{"filename": obj.Filename()}),
	}
	if _, err := a.client.PutObject(ctx, a.bucket, obj.Key, bytes.NewReader(obj.Data), int64(len(obj.Data)), opts); err != nil {
		return fmt.Errorf("failed to archive %s: %w", obj.Key, err)
	}
	return nil
}

// Get stats before reading so a missing key surfaces as ErrNotFound rather
// than as a read error halfway through.
func (a *minioArchive) Get(ctx context.Context, key string) (*Object, error) {
	reader, err := a.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, archiveError(key, err)
	}
	defer reader.Close()

	info, err := reader.Stat()
	if err != nil {
		return nil, archiveError(key, err)
	}

	data, err := io.ReadAll(io.LimitReader(reader, info.Size))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	return &Object{Key: key, ContentType: info.ContentType, Data: data}, nil
}

func (a *minioArchive) Remove(ctx context.Context, key string) error {
	if err := a.client.RemoveObject(ctx, a.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}

func archiveError(key string, err error) error {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return fmt.Errorf("failed to fetch %s: %w", key, err)
}
