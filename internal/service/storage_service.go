package service

import (
	"context"
	"fmt"
	"formation_backend/internal/config"
	"formation_backend/internal/util"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Storage abstracts where lesson assets live. Local disk for
// development, minio for deployments.
type Storage interface {
	Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	Remove(ctx context.Context, objectName string) error
	URL(objectName string) string
}

func NewStorage(cfg *config.Config) (Storage, error) {
	switch cfg.Storage.Type {
	case util.StorageMinio:
		return newMinioStorage(cfg)
	case util.StorageLocal, "":
		return &localStorage{basePath: cfg.Storage.LocalPath}, nil
	}
	return nil, fmt.Errorf("unknown storage type: %s", cfg.Storage.Type)
}

type localStorage struct {
	basePath string
}

func (s *localStorage) Save(_ context.Context, objectName string, reader io.Reader, _ int64, _ string) (string, error) {
	path := filepath.Join(s.basePath, filepath.FromSlash(objectName))
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, reader); err != nil {
		os.Remove(path)
		return "", err
	}
	return s.URL(objectName), nil
}

func (s *localStorage) Remove(_ context.Context, objectName string) error {
	return os.Remove(filepath.Join(s.basePath, filepath.FromSlash(objectName)))
}

func (s *localStorage) URL(objectName string) string {
	return "/uploads/" + strings.TrimPrefix(objectName, "/")
}

type minioStorage struct {
	client   *minio.Client
	bucket   string
	endpoint string
}

func newMinioStorage(cfg *config.Config) (*minioStorage, error) {
	client, err := minio.New(cfg.Storage.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.MinioAccessID, cfg.Storage.MinioSecret, ""),
		Secure: false,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Storage.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Storage.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("minio bucket create: %w", err)
		}
	}

	return &minioStorage{
		client:   client,
		bucket:   cfg.Storage.MinioBucket,
		endpoint: cfg.Storage.MinioEndpoint,
	}, nil
}

func (s *minioStorage) Save(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.URL(objectName), nil
}

func (s *minioStorage) Remove(ctx context.Context, objectName string) error {
	return s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{})
}

func (s *minioStorage) URL(objectName string) string {
	return fmt.Sprintf("http://%s/%s/%s", s.endpoint, s.bucket, objectName)
}
