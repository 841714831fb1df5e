package store

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"go.uber.org/zap"

	commonredis "kolangkoding.com/tradeledger/internal/common/redis"
	"kolangkoding.com/tradeledger/internal/config"
	"kolangkoding.com/tradeledger/internal/trade"
)

// Backend is a ledger store that owns external resources.
type Backend interface {
	Append(ctx context.Context, id trade.ID, t trade.Trade) error
	Replay(ctx context.Context, fn func(trade.ID, trade.Trade) error) error
	Close() error
}

// Memory keeps nothing outside the ledger's own maps.
type Memory struct{}

func (Memory) Append(context.Context, trade.ID, trade.Trade) error { return nil }

func (Memory) Replay(context.Context, func(trade.ID, trade.Trade) error) error { return nil }

func (Memory) Close() error { return nil }

func Open(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Backend {
	case "", config.BackendMemory:
		logger.Info("using in-memory ledger store")
		return Memory{}, nil

	case config.BackendBadger:
		key, err := parseEncryptionKey(cfg.Badger.EncryptionKey)
		if err != nil {
			return nil, newError("open", cfg.Badger.Path, err)
		}
		db, err := OpenBadger(BadgerOptions{
			Path:          cfg.Badger.Path,
			InMemory:      cfg.Badger.InMemory,
			EncryptionKey: key,
		}, logger)
		if err != nil {
			return nil, err
		}
		return db, nil

	case config.BackendRedis:
		client := commonredis.NewClient(
			commonredis.WithAddresses(cfg.Redis.Addresses...),
			commonredis.WithAuth(cfg.Redis.Password, cfg.Redis.DB),
			commonredis.WithMaxRetries(cfg.Redis.MaxRetries),
			commonredis.WithPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns),
			commonredis.WithTimeouts(cfg.Redis.DialTimeout, cfg.Redis.ReadTimeout, cfg.Redis.WriteTimeout),
		)
		if err := client.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, newError("open", strings.Join(cfg.Redis.Addresses, ","), err)
		}
		logger.Info("using redis ledger store", zap.Strings("addresses", cfg.Redis.Addresses))
		return NewRedis(client, logger), nil

	default:
		return nil, newError("open", cfg.Backend, ErrUnknownBackend)
	}
}

// parseEncryptionKey accepts 16, 24 or 32 bytes encoded as hex (optionally
// 0x-prefixed) or standard base64. An empty input disables encryption.
func parseEncryptionKey(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	if b, err := hex.DecodeString(strings.TrimPrefix(raw, "0x")); err == nil {
		return checkKeyLen(b)
	}
	if b, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return checkKeyLen(b)
	}
	return nil, fmt.Errorf("encryption key must be hex or base64")
}

func checkKeyLen(b []byte) ([]byte, error) {
	switch len(b) {
	case 16, 24, 32:
		return b, nil
	default:
		return nil, fmt.Errorf("encryption key must be 16, 24 or 32 bytes, got %d", len(b))
	}
}
