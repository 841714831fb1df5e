package store

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"strings"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/trade"
)

var (
	tradePrefix = []byte("t/")
	logPrefix   = []byte("l/")
)

type BadgerOptions struct {
	Path     string
	InMemory bool
	// EncryptionKey enables encryption at rest when set; it must be 16, 24 or 32 bytes.
	EncryptionKey []byte
}

// Badger persists the ledger in an embedded badger database. Each Append
// writes the trade under t/<id> and the ordered log entry under l/<seq> in a
// single transaction.
type Badger struct {
	db     *badger.DB
	mu     sync.Mutex
	next   uint64
	logger *zap.Logger
}

func OpenBadger(opts BadgerOptions, logger *zap.Logger) (*Badger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !opts.InMemory && strings.TrimSpace(opts.Path) == "" {
		return nil, newError("open", "", errors.New("badger path is required"))
	}

	bopts := badger.DefaultOptions(opts.Path).
		WithLogger(badgerLogger{logger.Named("badger").Sugar()}).
		WithInMemory(opts.InMemory)
	if opts.InMemory {
		bopts = bopts.WithDir("").WithValueDir("")
	}
	if len(opts.EncryptionKey) > 0 {
		// encrypted workloads need the index cache
		bopts = bopts.
			WithEncryptionKey(opts.EncryptionKey).
			WithIndexCacheSize(100 << 20)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, newError("open", opts.Path, err)
	}

	s := &Badger{db: db, logger: logger}
	if err := s.loadNext(); err != nil {
		_ = db.Close()
		return nil, newError("open", opts.Path, err)
	}

	s.logger.Info("badger store opened",
		zap.String("path", opts.Path),
		zap.Bool("in_memory", opts.InMemory),
		zap.Uint64("entries", s.next))
	return s, nil
}

func (s *Badger) loadNext() error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			Reverse:        true,
			PrefetchValues: false,
			Prefix:         logPrefix,
		})
		defer it.Close()

		// seek past the largest possible key under the prefix
		it.Seek(append(append([]byte{}, logPrefix...), bytes.Repeat([]byte{0xff}, 9)...))
		if it.ValidForPrefix(logPrefix) {
			s.next = binary.BigEndian.Uint64(it.Item().Key()[len(logPrefix):]) + 1
		}
		return nil
	})
}

func (s *Badger) Append(ctx context.Context, id trade.ID, t trade.Trade) error {
	if err := ctx.Err(); err != nil {
		return newError("append", id.Hex(), err)
	}

	value, err := t.ToJSON()
	if err != nil {
		return newError("append", id.Hex(), err)
	}
	entry, err := encodeEntry(id, t)
	if err != nil {
		return newError("append", id.Hex(), err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(tradeKey(id), value); err != nil {
			return err
		}
		return txn.Set(logKey(s.next), entry)
	})
	if err != nil {
		return newError("append", id.Hex(), err)
	}

	s.next++
	return nil
}

func (s *Badger) Replay(ctx context.Context, fn func(trade.ID, trade.Trade) error) error {
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{
			PrefetchValues: true,
			PrefetchSize:   100,
			Prefix:         logPrefix,
		})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var (
				id trade.ID
				t  trade.Trade
			)
			err := it.Item().Value(func(val []byte) error {
				var err error
				id, t, err = decodeEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(id, t); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return newError("replay", "", err)
	}
	return nil
}

func (s *Badger) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func tradeKey(id trade.ID) []byte {
	return append(append([]byte{}, tradePrefix...), id.Bytes()...)
}

func logKey(seq uint64) []byte {
	key := make([]byte, len(logPrefix)+8)
	copy(key, logPrefix)
	binary.BigEndian.PutUint64(key[len(logPrefix):], seq)
	return key
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	*zap.SugaredLogger
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.Warnf(format, args...)
}
