// s3 — драйвер archive.Store поверх AWS S3 (aws-sdk-go-v2).
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/pribylovaa/news-digest/internal/archive"
	"github.com/pribylovaa/news-digest/internal/config"
)

// Store — объектное хранилище изображений в S3 или совместимом сервисе.
type Store struct {
	bucket string
	client *s3.Client
}

// New строит клиента из стандартной цепочки AWS с переопределениями из конфига:
// регион, статические ключи (если заданы), собственный endpoint с path-style адресацией.
// Проверяет, что бакет существует.
func New(ctx context.Context, cfg config.S3Config) (*Store, error) {
	const op = "archive.s3.New"

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	_, err = client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)})
	if err != nil {
		var nf *s3types.NotFound
		if errors.As(err, &nf) {
			return nil, fmt.Errorf("%s: bucket %q does not exist", op, cfg.Bucket)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{bucket: cfg.Bucket, client: client}, nil
}

// Put загружает объект; существующий ключ перезаписывается.
func (s *Store) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	const op = "archive.s3.Put"

	in := &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000"),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

var _ archive.Store = (*Store)(nil)
