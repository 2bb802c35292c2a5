package ratelimit

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Интеграционные тесты лимитера на Redis. Запуск:
//   GO_TEST_INTEGRATION=1 go test ./internal/ratelimit -v -count=1

func startRedis(t *testing.T) string {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	return fmt.Sprintf("redis://%s:%s/0", host, port.Port())
}

func TestIntegration_Redis_FixedWindow(t *testing.T) {
	url := startRedis(t)
	ctx := context.Background()

	rl, err := NewRedis(ctx, url, "test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })

	for i := 0; i < 2; i++ {
		ok, err := rl.Allow(ctx, "news-reprocess:a", 2, 2*time.Second)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := rl.Allow(ctx, "news-reprocess:a", 2, 2*time.Second)
	require.NoError(t, err)
	require.False(t, ok)

	ttl, err := rl.rdb.TTL(ctx, rl.key("news-reprocess:a")).Result()
	require.NoError(t, err)
	require.Greater(t, ttl, time.Duration(0))

	require.Eventually(t, func() bool {
		ok, err := rl.Allow(ctx, "news-reprocess:a", 2, 2*time.Second)
		return err == nil && ok
	}, 10*time.Second, 500*time.Millisecond)
}

func TestNewRedis_BadURL(t *testing.T) {
	t.Parallel()

	_, err := NewRedis(context.Background(), "://nope", "")
	require.Error(t, err)
}
