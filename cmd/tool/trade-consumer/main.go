package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"kolangkoding.com/tradeledger/internal/common/streaming"
	"kolangkoding.com/tradeledger/internal/trade"
)

// ConsumerStats checks that every trader's TradeRecorded events arrive in
// ledger sequence order.
type ConsumerStats struct {
	processed  int64
	errors     int64
	violations int64
	startTime  time.Time

	mutex     sync.RWMutex
	perSymbol map[string]int64
	perTrader map[string]int64
	lastSeq   map[string]uint64
}

func NewConsumerStats() *ConsumerStats {
	return &ConsumerStats{
		startTime: time.Now(),
		perSymbol: make(map[string]int64),
		perTrader: make(map[string]int64),
		lastSeq:   make(map[string]uint64),
	}
}

func (s *ConsumerStats) recordEvent(ev trade.Event) {
	atomic.AddInt64(&s.processed, 1)

	trader := ev.Trader.Hex()

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if last, seen := s.lastSeq[trader]; seen && ev.Sequence <= last {
		atomic.AddInt64(&s.violations, 1)
		log.Printf("ORDER VIOLATION: trader %s trade %s has sequence %d <= previous %d",
			trader, ev.ID.Hex(), ev.Sequence, last)
	}

	s.perSymbol[ev.Symbol]++
	s.perTrader[trader]++
	s.lastSeq[trader] = ev.Sequence
}

func (s *ConsumerStats) recordError() {
	atomic.AddInt64(&s.errors, 1)
}

func (s *ConsumerStats) GetStats() (processed, errs, violations int64, rate float64) {
	processed = atomic.LoadInt64(&s.processed)
	errs = atomic.LoadInt64(&s.errors)
	violations = atomic.LoadInt64(&s.violations)
	rate = float64(processed) / time.Since(s.startTime).Seconds()
	return processed, errs, violations, rate
}

func (s *ConsumerStats) getSymbolStats() map[string]int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return copyCounts(s.perSymbol)
}

func (s *ConsumerStats) getTraderStats() map[string]int64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return copyCounts(s.perTrader)
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// top returns up to n "key:count" pairs, highest count first.
func top(counts map[string]int64, n int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s:%d", k, counts[k])
	}
	return strings.Join(parts, " ")
}

func main() {
	var (
		brokers    = flag.String("brokers", "localhost:19092", "Kafka brokers")
		topic      = flag.String("topic", "trade-recorded", "TradeRecorded topic to consume from")
		groupID    = flag.String("group", "trade-consumer-test", "Consumer group ID")
		maxWorkers = flag.Int("workers", 10, "Max workers for KeyOrderedProcessor")
		processor  = flag.String("processor", "key-ordered", "Processor type: sequential or key-ordered")
		verbose    = flag.Bool("verbose", false, "Verbose logging of events")
	)
	flag.Parse()

	var strategy streaming.ProcessingStrategy
	switch *processor {
	case "sequential":
		strategy = &streaming.SequentialProcessor{}
	case "key-ordered":
		strategy = &streaming.KeyOrderedProcessor{MaxWorkers: *maxWorkers}
	default:
		log.Fatalf("Unknown processor type: %s", *processor)
	}

	fmt.Printf("📊 Starting TradeRecorded Consumer\n")
	fmt.Printf("   Topic: %s\n", *topic)
	fmt.Printf("   Group ID: %s\n", *groupID)
	fmt.Printf("   Processor: %s (workers: %d)\n", *processor, *maxWorkers)
	fmt.Println()

	consumer, err := streaming.NewConsumer(
		strategy,
		streaming.WithConsumerBrokers(strings.Split(*brokers, ",")...),
		streaming.WithConsumerGroup(*groupID),
		streaming.WithTopic(*topic),
		streaming.WithConsumerClientID("trade-consumer"),
	)
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}

	stats := NewConsumerStats()
	validator := NewTradeValidatorConsumer(consumer, stats, *verbose)
	defer validator.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reportStats(ctx, stats)

	err = validator.Consume(ctx)
	printFinalStats(stats)
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Consumer error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Graceful shutdown completed")
}

func reportStats(ctx context.Context, stats *ConsumerStats) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			processed, errs, violations, rate := stats.GetStats()
			if processed == 0 {
				continue
			}
			fmt.Printf("📊 Processed: %d events, Errors: %d, Violations: %d, Rate: %.1f events/sec\n",
				processed, errs, violations, rate)
			fmt.Printf("   Top symbols: %s\n", top(stats.getSymbolStats(), 5))
		case <-ctx.Done():
			return
		}
	}
}

func printFinalStats(stats *ConsumerStats) {
	processed, errs, violations, rate := stats.GetStats()

	fmt.Printf("\n🎉 Final Consumer Statistics:\n")
	fmt.Printf("   Total Processed: %d events\n", processed)
	fmt.Printf("   Total Errors: %d\n", errs)
	fmt.Printf("   Order Violations: %d\n", violations)
	fmt.Printf("   Duration: %v\n", time.Since(stats.startTime).Round(time.Millisecond))
	fmt.Printf("   Average Rate: %.1f events/sec\n", rate)
	if processed > 0 {
		fmt.Printf("   Order Accuracy: %.2f%%\n", float64(processed-violations)*100/float64(processed))
	}

	traders := stats.getTraderStats()
	fmt.Printf("\n👤 Traders seen: %d\n", len(traders))
	fmt.Printf("   Most active: %s\n", top(traders, 3))
	fmt.Printf("\n📈 Symbols: %s\n", top(stats.getSymbolStats(), 10))

	if violations == 0 {
		fmt.Printf("\n✅ SUCCESS: every trader's events arrived in ledger order\n")
	} else {
		fmt.Printf("\n❌ WARNING: %d ordering violations detected\n", violations)
	}
}

type eventRecorder interface {
	recordEvent(ev trade.Event)
	recordError()
}

type kafkaConsumer interface {
	Consume(ctx context.Context, handler streaming.MessageHandler) error
	Close()
}

func NewTradeValidatorConsumer(
	consumer kafkaConsumer,
	recorder eventRecorder,
	verbose bool,
) *TradeValidatorConsumer {
	return &TradeValidatorConsumer{
		consumer: consumer,
		recorder: recorder,
		verbose:  verbose,
	}
}

type TradeValidatorConsumer struct {
	consumer  kafkaConsumer
	recorder  eventRecorder
	verbose   bool
	closeOnce sync.Once
}

func (c *TradeValidatorConsumer) Consume(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handler)
}

func (c *TradeValidatorConsumer) handler(_ context.Context, message streaming.ConsumerMessage) error {
	var ev trade.Event
	if err := ev.UnmarshalJSON(message.Value); err != nil {
		c.recorder.recordError()
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if key := string(message.Key); key != ev.Trader.Hex() {
		log.Printf("⚠️  KEY MISMATCH: expected key %s, got %s for trade %s",
			ev.Trader.Hex(), key, ev.ID.Hex())
	}

	c.recorder.recordEvent(ev)

	if c.verbose {
		fmt.Printf("📈 #%d %s %s @ %s by %s [%s] (partition: %d, offset: %d)\n",
			ev.Sequence, ev.Symbol, ev.Amount, ev.Price, ev.Trader.Hex(),
			ev.ID.Hex(), message.Partition, message.Offset)
	}
	return nil
}

func (c *TradeValidatorConsumer) Close() error {
	c.closeOnce.Do(c.consumer.Close)
	return nil
}
