package store

//go:generate mockgen -destination=mock_redis_client_test.go -package=store . redisClient

import (
	"context"

	"go.uber.org/zap"

	commonredis "kolangkoding.com/tradeledger/internal/common/redis"
	"kolangkoding.com/tradeledger/internal/trade"
)

const (
	redisTradeKeyPrefix = "ledger:trade:"
	redisLogKey         = "ledger:log"
)

type redisClient interface {
	TxAppend(ctx context.Context, cache commonredis.Cache, listKey string, entry any) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Close() error
}

// Redis persists the ledger in a shared redis deployment. The trade is stored
// under ledger:trade:<id> and its log entry is pushed onto ledger:log in the
// same MULTI/EXEC block.
type Redis struct {
	client redisClient
	logger *zap.Logger
}

func NewRedis(client *commonredis.Client, logger *zap.Logger) *Redis {
	return newRedis(client, logger)
}

func newRedis(client redisClient, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger.Named("redis-store")}
}

func (s *Redis) Append(ctx context.Context, id trade.ID, t trade.Trade) error {
	value, err := t.ToJSON()
	if err != nil {
		return newError("append", id.Hex(), err)
	}
	entry, err := encodeEntry(id, t)
	if err != nil {
		return newError("append", id.Hex(), err)
	}

	err = s.client.TxAppend(
		ctx,
		commonredis.Cache{Key: redisTradeKey(id), Value: value},
		redisLogKey,
		entry,
	)
	if err != nil {
		return newError("append", id.Hex(), err)
	}
	return nil
}

func (s *Redis) Replay(ctx context.Context, fn func(trade.ID, trade.Trade) error) error {
	entries, err := s.client.LRange(ctx, redisLogKey, 0, -1)
	if err != nil {
		return newError("replay", redisLogKey, err)
	}

	for i, raw := range entries {
		id, t, err := decodeEntry([]byte(raw))
		if err != nil {
			s.logger.Error("undecodable log entry", zap.Int("index", i), zap.Error(err))
			return newError("replay", redisLogKey, err)
		}
		if err := fn(id, t); err != nil {
			return err
		}
	}
	return nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func redisTradeKey(id trade.ID) string {
	return redisTradeKeyPrefix + id.Hex()
}
