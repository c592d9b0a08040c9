package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lotes-api/internal/infrastructure/cache"
)

type payload struct {
	Units int `json:"units"`
}

func newCache(t *testing.T) (*cache.StockCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewStockCache(client, time.Minute), mr
}

func TestFetchJSON_SegundaLlamadaUsaLaCache(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return payload{Units: 42}, nil
	}

	var first, second payload
	require.NoError(t, c.FetchJSON(ctx, "stock:locations", &first, loader))
	require.NoError(t, c.FetchJSON(ctx, "stock:locations", &second, loader))

	assert.Equal(t, 42, second.Units)
	assert.Equal(t, 1, calls)
}

func TestBump_InvalidaLasEntradas(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	units := 1
	loader := func(context.Context) (any, error) { return payload{Units: units}, nil }

	var out payload
	require.NoError(t, c.FetchJSON(ctx, "stock:locations", &out, loader))
	units = 2
	require.NoError(t, c.Bump(ctx))
	require.NoError(t, c.FetchJSON(ctx, "stock:locations", &out, loader))

	assert.Equal(t, 2, out.Units)
	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), ver)
}

func TestFetchJSON_ErrorDelLoaderNoSeGuarda(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	boom := errors.New("boom")

	var out payload
	err := c.FetchJSON(ctx, "stock:product:1", &out, func(context.Context) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("lotes:stock:product:1:1"))
}

func TestFetchJSON_RedisCaido(t *testing.T) {
	c, mr := newCache(t)
	mr.Close()

	var out payload
	err := c.FetchJSON(context.Background(), "stock:locations", &out, func(context.Context) (any, error) {
		return payload{Units: 1}, nil
	})
	assert.Error(t, err)
}
