// minio — драйвер archive.Store поверх MinIO.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/news-digest/internal/archive"
	"github.com/pribylovaa/news-digest/internal/config"
)

// Store — объектное хранилище изображений в MinIO.
type Store struct {
	bucket string
	client *mclient.Client
}

// New создаёт клиента MinIO.
// Убирает схему из endpoint, подбирает Secure по схеме (или use_ssl)
// и проверяет, что бакет существует.
func New(ctx context.Context, cfg config.S3Config) (*Store, error) {
	const op = "archive.minio.New"

	endpoint := cfg.Endpoint
	secure := cfg.UseSSL || strings.HasPrefix(endpoint, "https://")

	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		endpoint = u.Host
		secure = u.Scheme == "https"
	}

	client, err := mclient.New(endpoint, &mclient.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: secure,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
	}

	return &Store{bucket: cfg.Bucket, client: client}, nil
}

// Put загружает объект; существующий ключ перезаписывается.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	const op = "archive.minio.Put"

	_, err := s.client.PutObject(ctx, s.bucket, key, body, size, mclient.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=31536000",
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var _ archive.Store = (*Store)(nil)
