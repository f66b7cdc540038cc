package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-grosir/internal/catalog"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cache := catalog.NewCache(client, time.Minute)
	ctx := context.Background()

	type payload struct {
		Name string `json:"name"`
	}

	ok, err := cache.GetJSON(ctx, "catalog:test", &payload{})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, cache.SetJSON(ctx, "catalog:test", payload{Name: "pallet"}))

	var got payload
	ok, err = cache.GetJSON(ctx, "catalog:test", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "pallet", got.Name)

	require.NoError(t, cache.Invalidate(ctx, "catalog:test"))
	ok, err = cache.GetJSON(ctx, "catalog:test", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheNilClientIsNoop(t *testing.T) {
	cache := catalog.NewCache(nil, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.SetJSON(ctx, "k", map[string]string{"a": "b"}))
	var dst map[string]string
	ok, err := cache.GetJSON(ctx, "k", &dst)
	require.NoError(t, err)
	require.False(t, ok)
}
