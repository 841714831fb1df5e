// Package relay publishes TradeRecorded events from the in-process bus to
// Kafka.
package relay

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/common/streaming"
	"kolangkoding.com/tradeledger/internal/notify"
	"kolangkoding.com/tradeledger/internal/trade"
)

const (
	HeaderEventID = "event_id"
	HeaderTradeID = "trade_id"
	HeaderSymbol  = "symbol"
)

const defaultBuffer = 1024

type producer interface {
	ProduceSync(ctx context.Context, msg *streaming.Message) error
}

type Relay struct {
	bus      *notify.Bus
	producer producer
	topic    string
	buffer   int
	logger   *zap.Logger
	last     uint64
}

type Option func(*Relay)

func WithBuffer(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.buffer = n
		}
	}
}

// StartAfter skips events with a sequence up to and including seq, such as
// those replayed from the store at startup.
func StartAfter(seq uint64) Option {
	return func(r *Relay) {
		r.last = seq
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Relay) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func New(bus *notify.Bus, p producer, topic string, opts ...Option) *Relay {
	r := &Relay{
		bus:      bus,
		producer: p,
		topic:    topic,
		buffer:   defaultBuffer,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("relay")
	return r
}

// Run publishes events until ctx is done or the bus closes. If the relay
// falls behind and the bus drops its subscription, it resubscribes from the
// last published sequence so no event is skipped.
func (r *Relay) Run(ctx context.Context) error {
	for {
		backlog, sub := r.bus.SubscribeSince(r.last, r.buffer)
		err := r.drain(ctx, backlog, sub)
		sub.Close()
		if err != nil {
			return err
		}

		if ctx.Err() != nil || r.bus.Closed() {
			r.logger.Info("relay stopped", zap.Uint64("last_sequence", r.last))
			return nil
		}
		r.logger.Warn("subscription dropped, resubscribing", zap.Uint64("last_sequence", r.last))
	}
}

func (r *Relay) drain(ctx context.Context, backlog []trade.Event, sub *notify.Subscription) error {
	for _, ev := range backlog {
		if err := r.publish(ctx, ev); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := r.publish(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (r *Relay) publish(ctx context.Context, ev trade.Event) error {
	if ev.Sequence <= r.last {
		return nil
	}

	value, err := ev.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode event %d: %w", ev.Sequence, err)
	}

	err = r.producer.ProduceSync(ctx, &streaming.Message{
		Topic: r.topic,
		Key:   []byte(ev.Trader.Hex()),
		Value: value,
		Headers: map[string][]byte{
			HeaderEventID: []byte(ev.EventID.String()),
			HeaderTradeID: []byte(ev.ID.Hex()),
			HeaderSymbol:  []byte(ev.Symbol),
		},
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to publish event %d: %w", ev.Sequence, err)
	}

	r.last = ev.Sequence
	return nil
}
