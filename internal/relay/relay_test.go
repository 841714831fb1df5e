package relay

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"kolangkoding.com/tradeledger/internal/common/streaming"
	"kolangkoding.com/tradeledger/internal/notify"
	"kolangkoding.com/tradeledger/internal/trade"
)

type recordingProducer struct {
	mu       sync.Mutex
	messages []*streaming.Message
	gate     chan struct{}
	err      error
}

func (p *recordingProducer) ProduceSync(ctx context.Context, msg *streaming.Message) error {
	if p.gate != nil {
		select {
		case <-p.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, msg)
	return nil
}

func (p *recordingProducer) sequences(t *testing.T) []uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]uint64, 0, len(p.messages))
	for _, msg := range p.messages {
		var ev trade.Event
		require.NoError(t, ev.UnmarshalJSON(msg.Value))
		out = append(out, ev.Sequence)
	}
	return out
}

func (p *recordingProducer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.messages)
}

var trader = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

func event(seq uint64) trade.Event {
	t := trade.New(trader, "AAPL", big.NewInt(int64(seq)), big.NewInt(100), seq)
	return trade.NewEvent(t.ID(), t, seq, time.Unix(int64(seq), 0))
}

func TestRelay_PublishesEvents(t *testing.T) {
	bus := notify.NewBus(nil)
	p := &recordingProducer{}
	r := New(bus, p, "trade-recorded")

	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	ev := event(1)
	bus.Notify(ev)
	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 5*time.Millisecond)

	bus.Close()
	require.NoError(t, <-done)

	msg := p.messages[0]
	require.Equal(t, "trade-recorded", msg.Topic)
	require.Equal(t, []byte(trader.Hex()), msg.Key)
	require.Equal(t, []byte(ev.EventID.String()), msg.Headers[HeaderEventID])
	require.Equal(t, []byte(ev.ID.Hex()), msg.Headers[HeaderTradeID])
	require.Equal(t, []byte("AAPL"), msg.Headers[HeaderSymbol])
}

func TestRelay_ReplaysBacklogAfterStart(t *testing.T) {
	bus := notify.NewBus(nil)
	for seq := uint64(1); seq <= 5; seq++ {
		bus.Notify(event(seq))
	}
	bus.Close()

	p := &recordingProducer{}
	require.NoError(t, New(bus, p, "e", StartAfter(2)).Run(context.Background()))
	require.Equal(t, []uint64{3, 4, 5}, p.sequences(t))
}

func TestRelay_ResubscribesWhenDropped(t *testing.T) {
	bus := notify.NewBus(nil)
	p := &recordingProducer{gate: make(chan struct{})}
	r := New(bus, p, "e", WithBuffer(1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	// The first publish blocks on the gate, so the one-slot subscription
	// overflows and the bus drops it.
	const n = 10
	for seq := uint64(1); seq <= n; seq++ {
		bus.Notify(event(seq))
	}
	close(p.gate)

	require.Eventually(t, func() bool { return p.count() == n }, 2*time.Second, 5*time.Millisecond)
	require.Equal(t, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, p.sequences(t))

	cancel()
	require.NoError(t, <-done)
}

func TestRelay_ProducerFailure(t *testing.T) {
	bus := notify.NewBus(nil)
	bus.Notify(event(1))

	p := &recordingProducer{err: errors.New("broker unavailable")}
	err := New(bus, p, "e").Run(context.Background())
	require.ErrorContains(t, err, "failed to publish event 1: broker unavailable")
}
