package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"testing"
	"time"

	mclient "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pribylovaa/news-digest/internal/config"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты драйвера MinIO. Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/archive/minio -v -count=1

const (
	rootUser     = "root"
	rootPassword = "rootpass"
	bucket       = "news-images"
)

func startMinio(t *testing.T) (endpoint string, admin *mclient.Client) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "docker.io/minio/minio:latest",
		Env:          map[string]string{"MINIO_ROOT_USER": rootUser, "MINIO_ROOT_PASSWORD": rootPassword},
		Cmd:          []string{"server", "/data"},
		ExposedPorts: []string{"9000/tcp"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000/tcp")
	require.NoError(t, err)

	admin, err = mclient.New(host+":"+port.Port(), &mclient.Options{
		Creds: credentials.NewStaticV4(rootUser, rootPassword, ""),
	})
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, port.Port()), admin
}

func cfgFor(endpoint string) config.S3Config {
	return config.S3Config{
		Driver:    "minio",
		Endpoint:  endpoint,
		Region:    "us-east-1",
		AccessKey: rootUser,
		SecretKey: rootPassword,
		Bucket:    bucket,
	}
}

func TestIntegration_New_BucketMustExist(t *testing.T) {
	endpoint, _ := startMinio(t)

	_, err := New(context.Background(), cfgFor(endpoint))
	require.Error(t, err)
	require.Contains(t, err.Error(), "does not exist")
}

// Повторная загрузка по тому же ключу перезаписывает объект.
func TestIntegration_Put_Upsert(t *testing.T) {
	endpoint, admin := startMinio(t)
	ctx := context.Background()
	require.NoError(t, admin.MakeBucket(ctx, bucket, mclient.MakeBucketOptions{Region: "us-east-1"}))

	st, err := New(ctx, cfgFor(endpoint))
	require.NoError(t, err)

	require.NoError(t, st.Put(ctx, "news/a.jpg", bytes.NewReader([]byte("v1")), 2, "image/jpeg"))
	require.NoError(t, st.Put(ctx, "news/a.jpg", bytes.NewReader([]byte("v2-new")), 6, "image/png"))

	obj, err := admin.GetObject(ctx, bucket, "news/a.jpg", mclient.GetObjectOptions{})
	require.NoError(t, err)
	defer obj.Close()

	body, err := io.ReadAll(obj)
	require.NoError(t, err)
	require.Equal(t, "v2-new", string(body))

	info, err := obj.Stat()
	require.NoError(t, err)
	require.Equal(t, "image/png", info.ContentType)
}
