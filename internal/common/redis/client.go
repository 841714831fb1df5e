package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func newClient(opts ...Option) redis.UniversalClient {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}

	return redis.NewUniversalClient(
		&redis.UniversalOptions{
			Addrs:        cfg.addresses,
			Password:     cfg.password,
			DB:           cfg.db,
			MaxRetries:   cfg.maxRetries,
			DialTimeout:  cfg.dialTimeout,
			ReadTimeout:  cfg.readTimeout,
			WriteTimeout: cfg.writeTimeout,
			PoolSize:     cfg.poolSize,
			MinIdleConns: cfg.minIdleConns,
		},
	)
}

type storage interface {
	Close() error
}

type listStorage interface {
	storage
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

//go:generate mockgen -destination=mock_client_storage_test.go -package=redis . clientStorage

type clientStorage interface {
	listStorage
	Ping(ctx context.Context) *redis.StatusCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

func NewClient(opts ...Option) *Client {
	return &Client{
		storage: newClient(opts...),
	}
}

// Cache is one key write; a zero Expiration keeps the key forever.
type Cache struct {
	Key        string
	Value      any
	Expiration time.Duration
}

type Client struct {
	storage clientStorage
}

func (c *Client) Ping(ctx context.Context) error {
	if err := c.storage.Ping(ctx).Err(); err != nil {
		return NewStorageError("ping", "", errors.Join(ErrConnectionFailed, err))
	}
	return nil
}

// LRange returns the list elements between start and stop inclusive; -1
// addresses the last element.
func (c *Client) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	values, err := c.storage.LRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, NewStorageError("lrange", key, err)
	}
	return values, nil
}

// TxAppend sets cache and pushes entry onto listKey inside one MULTI/EXEC
// block, so either both writes land or neither does.
func (c *Client) TxAppend(
	ctx context.Context,
	cache Cache,
	listKey string,
	entry any,
) error {
	if cache.Key == "" || listKey == "" {
		return NewStorageError("txappend", cache.Key, ErrInvalidOperation)
	}

	_, err := c.storage.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, cache.Key, cache.Value, cache.Expiration)
		pipe.RPush(ctx, listKey, entry)
		return nil
	})
	if err != nil {
		return NewStorageError("txappend", cache.Key, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.storage.Close()
}
