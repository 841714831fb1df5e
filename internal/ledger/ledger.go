package ledger

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/trade"
)

// Store persists the ledger's append log. Append must be all-or-nothing:
// when it returns an error nothing may have been written.
type Store interface {
	Append(ctx context.Context, id trade.ID, t trade.Trade) error
	Replay(ctx context.Context, fn func(id trade.ID, t trade.Trade) error) error
}

// Notifier receives one event per recorded trade, in append order.
// Implementations must not block.
type Notifier interface {
	Notify(ev trade.Event)
}

type Option func(*Ledger)

func WithStore(store Store) Option {
	return func(l *Ledger) {
		if store != nil {
			l.store = store
		}
	}
}

func WithNotifier(notifier Notifier) Option {
	return func(l *Ledger) {
		if notifier != nil {
			l.notifier = notifier
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(l *Ledger) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func WithRegisterer(reg prometheus.Registerer) Option {
	return func(l *Ledger) {
		l.registerer = reg
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// Ledger indexes recorded trades by identifier and by trader. Writes are
// serialized by a single lock so identifier computation, persistence, both
// index updates and the notification are observed as one unit.
type Ledger struct {
	mu           sync.RWMutex
	byIdentifier map[trade.ID]trade.Trade
	byTrader     map[common.Address][]trade.Trade
	appended     int
	seq          uint64

	store      Store
	notifier   Notifier
	logger     *zap.Logger
	registerer prometheus.Registerer
	metrics    *metrics
	now        func() time.Time
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		byIdentifier: make(map[trade.ID]trade.Trade),
		byTrader:     make(map[common.Address][]trade.Trade),
		store:        nopStore{},
		notifier:     nopNotifier{},
		logger:       zap.NewNop(),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.logger = l.logger.Named("ledger")
	l.metrics = newMetrics(l.registerer)
	return l
}

func (l *Ledger) RecordTrade(
	ctx context.Context,
	caller common.Address,
	symbol string,
	amount, price *big.Int,
	timestamp uint64,
) (trade.ID, error) {
	if err := trade.Validate(amount, price); err != nil {
		l.metrics.rejected.WithLabelValues(rejectReason(err)).Inc()
		l.logger.Debug("trade rejected",
			zap.Stringer("trader", caller),
			zap.String("symbol", symbol),
			zap.Error(err))
		return trade.ID{}, err
	}

	t := trade.New(caller, symbol, amount, price, timestamp)
	id := t.ID()

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Append(ctx, id, t); err != nil {
		l.metrics.rejected.WithLabelValues(reasonStore).Inc()
		return trade.ID{}, fmt.Errorf("failed to persist trade %s: %w", id.Hex(), err)
	}

	if _, exists := l.byIdentifier[id]; exists {
		l.logger.Debug("overwriting trade with identical identifier", zap.Stringer("id", id))
	}

	l.applyLocked(id, t)
	l.notifier.Notify(trade.NewEvent(id, t, l.seq, l.now()))
	l.metrics.recorded.Inc()

	l.logger.Info("trade recorded",
		zap.Stringer("id", id),
		zap.Stringer("trader", caller),
		zap.String("symbol", symbol),
		zap.Stringer("amount", t.Amount),
		zap.Stringer("price", t.Price),
		zap.Uint64("sequence", l.seq))

	return id, nil
}

func (l *Ledger) applyLocked(id trade.ID, t trade.Trade) {
	l.byIdentifier[id] = t
	l.byTrader[t.Trader] = append(l.byTrader[t.Trader], t.Clone())
	l.appended++
	l.seq++
}

// GetTrade returns the stored fields for id. A miss yields the zero tuple
// ("", 0, 0, 0) and is indistinguishable from a stored all-zero trade; use
// Lookup when the caller needs to tell the two apart.
func (l *Ledger) GetTrade(id trade.ID) (string, *big.Int, *big.Int, uint64) {
	t, ok := l.Lookup(id)
	if !ok {
		return "", new(big.Int), new(big.Int), 0
	}
	return t.Symbol, t.Amount, t.Price, t.Timestamp
}

func (l *Ledger) Lookup(id trade.ID) (trade.Trade, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	t, ok := l.byIdentifier[id]
	if !ok {
		return trade.Trade{}, false
	}
	return t.Clone(), true
}

// GetTraderTrades returns the trader's full history in insertion order. The
// result is never nil.
func (l *Ledger) GetTraderTrades(trader common.Address) []trade.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()

	history := l.byTrader[trader]
	out := make([]trade.Trade, len(history))
	for i, t := range history {
		out[i] = t.Clone()
	}
	return out
}

// Len reports the number of distinct identifiers and the total number of
// appended trades across all traders.
func (l *Ledger) Len() (identifiers, appended int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byIdentifier), l.appended
}

// Sequence is the sequence number of the last emitted notification.
func (l *Ledger) Sequence() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.seq
}

// Restore rebuilds both indexes from the store's append log. It replaces any
// in-memory state and emits no notifications. The log is replayed into fresh
// indexes that are swapped in only once the replay succeeded, so a failed
// restore leaves the ledger as it was.
func (l *Ledger) Restore(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		byIdentifier = make(map[trade.ID]trade.Trade)
		byTrader     = make(map[common.Address][]trade.Trade)
		appended     int
	)
	err := l.store.Replay(ctx, func(id trade.ID, t trade.Trade) error {
		byIdentifier[id] = t
		byTrader[t.Trader] = append(byTrader[t.Trader], t.Clone())
		appended++
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to restore ledger: %w", err)
	}

	l.byIdentifier = byIdentifier
	l.byTrader = byTrader
	l.appended = appended
	l.seq = uint64(appended)

	l.logger.Info("ledger restored",
		zap.Int("identifiers", len(l.byIdentifier)),
		zap.Int("appended", l.appended),
		zap.Int("traders", len(l.byTrader)))
	return nil
}

type nopStore struct{}

func (nopStore) Append(context.Context, trade.ID, trade.Trade) error { return nil }

func (nopStore) Replay(context.Context, func(trade.ID, trade.Trade) error) error { return nil }

type nopNotifier struct{}

func (nopNotifier) Notify(trade.Event) {}
