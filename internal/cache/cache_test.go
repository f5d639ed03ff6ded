package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/Abhi-200412/AuraMed-sub000/internal/cache"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis spins up a Redis container and returns a connected RedisCache.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisURL := "redis://" + host + ":" + port.Port()
	rc, err := cache.NewRedisCache(redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rc.Close()) })

	return rc
}

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	assert.NoError(t, rc.Ping(context.Background()))
}

func TestJobStatus_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	jobID := uuid.New()

	require.NoError(t, rc.SetJobStatus(ctx, jobID, "running", time.Minute))

	status, found, err := rc.GetJobStatus(ctx, jobID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "running", status)
}

func TestJobStatus_Missing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)

	_, found, err := rc.GetJobStatus(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIncrWithExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()
	key := cache.RateLimitKey("10.0.0.1")

	for want := int64(1); want <= 3; want++ {
		got, err := rc.IncrWithExpiry(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := cache.NewRedisCache("not-a-url")
	assert.Error(t, err)
}
