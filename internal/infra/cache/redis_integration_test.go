//go:build integration

package cache_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/boddenberg/office-admin-go/internal/infra/cache"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

type cachedUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func TestIntegration_RedisCache(t *testing.T) {
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	rdb, err := cache.NewRedisClient(ctx, fmt.Sprintf("%s:%s", host, port.Port()), "", 0)
	require.NoError(t, err)
	defer rdb.Close()

	c := cache.NewRedis[cachedUser](rdb, "officeadmin:test:", 200*time.Millisecond, zap.NewNop())

	t.Run("miss then hit", func(t *testing.T) {
		_, ok := c.Get(ctx, "u1")
		require.False(t, ok)

		c.Set(ctx, "u1", cachedUser{ID: "u1", Username: "ana"})
		got, ok := c.Get(ctx, "u1")
		require.True(t, ok)
		require.Equal(t, "ana", got.Username)
	})

	t.Run("delete", func(t *testing.T) {
		c.Set(ctx, "u2", cachedUser{ID: "u2"})
		c.Delete(ctx, "u2")
		_, ok := c.Get(ctx, "u2")
		require.False(t, ok)
	})

	t.Run("ttl", func(t *testing.T) {
		c.Set(ctx, "u3", cachedUser{ID: "u3"})
		time.Sleep(400 * time.Millisecond)
		_, ok := c.Get(ctx, "u3")
		require.False(t, ok)
	})
}
