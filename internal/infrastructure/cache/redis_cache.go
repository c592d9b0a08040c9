// Package cache implementa la caché versionada de consultas de stock sobre Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/lotes-api/internal/application/ports"
)

const versionKey = "lotes:stock:version"

var _ ports.StockCache = (*StockCache)(nil)

// StockCache guarda respuestas JSON con una versión global; Bump invalida todo incrementándola.
type StockCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStockCache construye la caché. ttl <= 0 deja las entradas sin expiración.
func NewStockCache(client *redis.Client, ttl time.Duration) *StockCache {
	return &StockCache{client: client, ttl: ttl}
}

// NewClient abre un cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Version devuelve la versión vigente, inicializándola si no existe.
func (c *StockCache) Version(ctx context.Context) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

func (c *StockCache) buildKey(ctx context.Context, key string) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("lotes:%s:%d", strings.TrimPrefix(key, "lotes:"), ver), nil
}

// FetchJSON implementa ports.StockCache.
func (c *StockCache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("cache: loader requerido")
	}
	fullKey, err := c.buildKey(ctx, key)
	if err != nil {
		return err
	}
	payload, err := c.client.Get(ctx, fullKey).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, fullKey, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalida todas las entradas.
func (c *StockCache) Bump(ctx context.Context) error {
	return c.client.Incr(ctx, versionKey).Err()
}
