//go:build integration

package geocoding_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/UnknownOlympus/hopmap/internal/geocoding"
	"github.com/UnknownOlympus/hopmap/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestRedisCache_Integration(t *testing.T) {
	ctx := t.Context()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	cache := geocoding.NewRedisCache(client, time.Minute)
	key := geocoding.CacheKey("Columbus, Ohio")

	_, err = cache.Get(ctx, key)
	require.ErrorIs(t, err, geocoding.ErrNotCached)

	require.NoError(t, cache.Set(ctx, key, models.Coordinates{Latitude: 39.9612, Longitude: -82.9988}))

	coords, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.InEpsilon(t, 39.9612, coords.Latitude, 1e-9)
	assert.InEpsilon(t, -82.9988, coords.Longitude, 1e-9)

	ttl, err := client.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Positive(t, ttl)
}
