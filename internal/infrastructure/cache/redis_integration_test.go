//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/catalogsync/backend/internal/domain/catalog"
	"github.com/catalogsync/backend/internal/domain/grid"
	"github.com/catalogsync/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := NewRedisClient(config.RedisConfig{Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStores(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}
	client := newRedisClient(t)
	ctx := context.Background()

	t.Run("layouts", func(t *testing.T) {
		store := NewRedisLayoutStore(client)
		layout := grid.Layout{Order: []string{"title", "sku"}, Widths: map[string]int{"title": 400}}

		got, err := store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, store.Save(ctx, "catalog", layout))
		got, err = store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Equal(t, layout, *got)

		require.NoError(t, store.Delete(ctx, "catalog"))
		got, err = store.Load(ctx, "catalog")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("variants expire with ttl", func(t *testing.T) {
		c := NewRedisVariantCache(client, time.Minute)
		offers := []catalog.Variant{{NormalizedSKU: "SKU-1", DistributorName: "Alpha", Cost: decimal.RequireFromString("9.5")}}

		require.NoError(t, c.Set(ctx, "SKU-1", offers))
		got, ok, err := c.Get(ctx, "SKU-1")
		require.NoError(t, err)
		assert.True(t, ok)
		require.Len(t, got, 1)
		assert.True(t, offers[0].Cost.Equal(got[0].Cost))

		ttl, err := client.TTL(ctx, variantKeyPrefix+"SKU-1").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, 50*time.Second)

		require.NoError(t, c.Set(ctx, "SKU-404", nil))
		got, ok, err = c.Get(ctx, "SKU-404")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("idempotency keys", func(t *testing.T) {
		store := NewRedisIdempotencyStore(client)

		isNew, err := store.MarkProcessed(ctx, "push:req-1", time.Minute)
		require.NoError(t, err)
		assert.True(t, isNew)

		isNew, err = store.MarkProcessed(ctx, "push:req-1", time.Minute)
		require.NoError(t, err)
		assert.False(t, isNew)

		done, err := store.IsProcessed(ctx, "push:req-1")
		require.NoError(t, err)
		assert.True(t, done)

		require.NoError(t, store.Forget(ctx, "push:req-1"))
		done, err = store.IsProcessed(ctx, "push:req-1")
		require.NoError(t, err)
		assert.False(t, done)
	})
}
