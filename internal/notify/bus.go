package notify

import (
	"sync"

	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/trade"
)

// Bus is the in-process TradeRecorded stream. Every event is kept in an
// append-only log of consecutive sequences and fanned out to live subscribers without blocking the
// publisher: a subscriber whose buffer is full is dropped and its channel closed.
type Bus struct {
	mu     sync.RWMutex
	log    []trade.Event
	subs   map[uint64]*Subscription
	nextID uint64
	closed bool
	logger *zap.Logger
}

func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[uint64]*Subscription),
		logger: logger.Named("notify"),
	}
}

type Subscription struct {
	id     uint64
	events chan trade.Event
	bus    *Bus
	once   sync.Once
}

// Events is closed when the subscription ends, either through Close, the bus
// closing, or the subscriber falling behind.
func (s *Subscription) Events() <-chan trade.Event {
	return s.events
}

func (s *Subscription) Close() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	s.bus.removeLocked(s.id)
}

func (s *Subscription) closeChan() {
	s.once.Do(func() { close(s.events) })
}

func (b *Bus) Subscribe(buffer int) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subscribeLocked(buffer)
}

// SubscribeSince atomically returns the logged events with a sequence greater
// than seq and a live subscription for everything after them.
func (b *Bus) SubscribeSince(seq uint64, buffer int) ([]trade.Event, *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.sinceLocked(seq), b.subscribeLocked(buffer)
}

func (b *Bus) subscribeLocked(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = 1
	}

	b.nextID++
	sub := &Subscription{
		id:     b.nextID,
		events: make(chan trade.Event, buffer),
		bus:    b,
	}
	if b.closed {
		sub.closeChan()
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

func (b *Bus) Notify(ev trade.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.log = append(b.log, ev)

	for id, sub := range b.subs {
		select {
		case sub.events <- ev:
		default:
			b.logger.Warn("dropping slow subscriber",
				zap.Uint64("subscriber", id),
				zap.Uint64("sequence", ev.Sequence))
			b.removeLocked(id)
		}
	}
}

// sinceLocked copies the logged events with a sequence greater than seq.
// Logged sequences are consecutive, so the start index follows from the first
// one and only the returned tail is copied.
func (b *Bus) sinceLocked(seq uint64) []trade.Event {
	if len(b.log) == 0 {
		return []trade.Event{}
	}

	start := 0
	if first := b.log[0].Sequence; seq >= first {
		skip := seq - first + 1
		if skip >= uint64(len(b.log)) {
			return []trade.Event{}
		}
		start = int(skip)
	}

	out := make([]trade.Event, len(b.log)-start)
	copy(out, b.log[start:])
	return out
}

func (b *Bus) Closed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.closed
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id := range b.subs {
		b.removeLocked(id)
	}
}

func (b *Bus) removeLocked(id uint64) {
	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	sub.closeChan()
}
