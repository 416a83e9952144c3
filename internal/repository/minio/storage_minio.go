package minio

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/njprem/PlaceBook_BackEnd/internal/repository/ports"
)

type Storage struct {
	client    *minio.Client
	publicURL string
}

func NewClient(endpoint, key, secret string, useSSL bool) (*minio.Client, error) {
	return minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(key, secret, ""),
		Secure: useSSL,
	})
}

// NewStorage wraps client. publicURL is the externally reachable base for object
// links; when empty the client endpoint is used.
func NewStorage(client *minio.Client, publicURL string) *Storage {
	base := strings.TrimRight(publicURL, "/")
	if base == "" {
		base = strings.TrimRight(client.EndpointURL().String(), "/")
	}
	return &Storage{client: client, publicURL: base}
}

// EnsureBucket creates bucket when missing.
func (s *Storage) EnsureBucket(ctx context.Context, bucket string) error {
	exists, err := s.client.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{})
}

func (s *Storage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, bucket, objectName, reader, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", fmt.Errorf("minio: put %s/%s: %w", bucket, objectName, err)
	}
	return objectURL(s.publicURL, bucket, objectName), nil
}

func (s *Storage) Remove(ctx context.Context, bucket, objectName string) error {
	return s.client.RemoveObject(ctx, bucket, objectName, minio.RemoveObjectOptions{})
}

func objectURL(base, bucket, objectName string) string {
	return base + "/" + bucket + "/" + strings.TrimLeft(objectName, "/")
}

var _ ports.ObjectStorage = (*Storage)(nil)
