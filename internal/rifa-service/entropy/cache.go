package entropy

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache guarda respostas de concursos já publicados. Resultados de loteria
// são imutáveis depois da apuração, então servem de cache sem invalidação.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, val string)
}

// RedisCache implementa Cache sobre Redis.
type RedisCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, ttl: ttl}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.rdb.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, val string) {
	// cache é best-effort; falha aqui não derruba o sorteio
	_ = c.rdb.Set(ctx, key, val, c.ttl).Err()
}
