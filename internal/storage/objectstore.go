package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/qventory/demandcast/internal/config"
	"github.com/qventory/demandcast/pkg/logger"
)

// ObjectStore fetches input workbooks from a remote bucket. Merchants drop
// their exports into S3-compatible storage; the pipeline pulls them down
// before ingesting.
type ObjectStore interface {
	Download(ctx context.Context, object, destPath string) error
	List(ctx context.Context, prefix string) ([]string, error)
}

// MinioStore implements ObjectStore against any S3-compatible endpoint.
type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(cfg config.StorageConfig) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object storage endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("object storage credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("object storage bucket must be provided")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// Download fetches one object to destPath, creating parent directories as
// needed.
func (s *MinioStore) Download(ctx context.Context, object, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	if err := s.client.FGetObject(ctx, s.bucket, object, destPath, minio.GetObjectOptions{}); err != nil {
		return fmt.Errorf("failed to download %s from bucket %s: %w", object, s.bucket, err)
	}
	logger.Log.Info().Str("object", object).Str("dest", destPath).Msg("downloaded input workbook")
	return nil
}

// List returns the object keys under prefix.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, info.Err)
		}
		keys = append(keys, info.Key)
	}
	return keys, nil
}
