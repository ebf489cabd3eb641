package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/Trazabilidad-api/internal/application/ports"
)

// NewRedisClient abre la conexión y verifica con PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}

// Obtainer subconjunto de *redislock.Client usado por el candado.
type Obtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// RedisLocker candado distribuido sobre bsm/redislock.
type RedisLocker struct {
	client Obtainer
	prefix string
}

var _ ports.RunLocker = (*RedisLocker)(nil)

// NewRedisLocker prefix se antepone a cada llave (p. ej. el nombre de la aplicación).
func NewRedisLocker(rdb redislock.RedisClient, prefix string) *RedisLocker {
	return NewRedisLockerWith(redislock.New(rdb), prefix)
}

// NewRedisLockerWith usa un Obtainer ya construido.
func NewRedisLockerWith(client Obtainer, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

// Acquire intenta una sola vez; no reintenta si la llave está tomada.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ports.ReleaseFunc, error) {
	lk, err := l.client.Obtain(ctx, l.key(key), ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, ports.ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("redislock obtain %s: %w", key, err)
	}
	return func(ctx context.Context) error {
		if err := lk.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			return fmt.Errorf("redislock release %s: %w", key, err)
		}
		return nil
	}, nil
}

func (l *RedisLocker) key(k string) string {
	if l.prefix == "" {
		return "lock:" + k
	}
	return "lock:" + l.prefix + ":" + k
}
