package streaming

//go:generate mockgen -destination=mock_kgo_consumer_test.go -package=streaming . kgoConsumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"
)

type ConsumerMessage struct {
	Topic     string
	Partition int32
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string][]byte
	Timestamp time.Time
}

type MessageHandler func(context.Context, ConsumerMessage) error
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	franzOpt     []kgo.Opt
	logger       *zap.Logger
	manualCommit bool
}

type kgoConsumer interface {
	PollFetches(ctx context.Context) kgo.Fetches
	CommitRecords(ctx context.Context, rs ...*kgo.Record) error
	Close()
}

func WithConsumerBrokers(brokers ...string) ConsumerOption {
	return func(c *consumerConfig) {
		c.franzOpt = append(c.franzOpt, kgo.SeedBrokers(brokers...))
	}
}

func WithConsumerGroup(group string) ConsumerOption {
	return func(c *consumerConfig) {
		c.franzOpt = append(c.franzOpt, kgo.ConsumerGroup(group))
	}
}

func WithTopic(topic string) ConsumerOption {
	return func(c *consumerConfig) {
		c.franzOpt = append(c.franzOpt, kgo.ConsumeTopics(topic))
	}
}

func WithConsumerClientID(clientID string) ConsumerOption {
	return func(c *consumerConfig) {
		c.franzOpt = append(c.franzOpt, kgo.ClientID(clientID))
	}
}

func WithConsumerLogger(logger *zap.Logger) ConsumerOption {
	return func(c *consumerConfig) {
		c.logger = logger
	}
}

// WithManualCommit turns off autocommit. Offsets of a fetch are committed
// only after the processor handled every record in it, so a crash replays
// the fetch instead of losing it.
func WithManualCommit() ConsumerOption {
	return func(c *consumerConfig) {
		c.manualCommit = true
		c.franzOpt = append(c.franzOpt, kgo.DisableAutoCommit())
	}
}

func NewConsumer(
	processor ProcessingStrategy,
	opts ...ConsumerOption,
) (*Consumer, error) {
	cfg := &consumerConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	franz, err := kgo.NewClient(cfg.franzOpt...)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer client: %w", err)
	}

	return &Consumer{
		client:       franz,
		processor:    processor,
		manualCommit: cfg.manualCommit,
		logger:       cfg.logger.Named("consumer"),
	}, nil
}

type Consumer struct {
	client       kgoConsumer
	processor    ProcessingStrategy
	manualCommit bool
	logger       *zap.Logger
}

// Consume polls until ctx is done, the client is closed, or a fetch or
// handler fails. It returns ctx.Err() on cancellation and nil once closed.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	for ctx.Err() == nil {
		fetches := c.client.PollFetches(ctx)
		if fetches.IsClientClosed() {
			return nil
		}
		if err := fetchError(ctx, fetches); err != nil {
			return err
		}

		records := fetches.Records()
		if len(records) == 0 {
			continue
		}

		messages := make([]ConsumerMessage, len(records))
		for i, record := range records {
			messages[i] = recordToConsumerMessage(record)
		}
		if err := c.processor.ProcessRecords(ctx, messages, handler); err != nil {
			return err
		}

		if c.manualCommit {
			if err := c.client.CommitRecords(ctx, records...); err != nil {
				return fmt.Errorf("failed to commit offsets: %w", err)
			}
			c.logger.Debug("committed fetch", zap.Int("records", len(records)))
		}
	}
	return ctx.Err()
}

func fetchError(ctx context.Context, fetches kgo.Fetches) error {
	errs := fetches.Errors()
	if len(errs) == 0 {
		return nil
	}

	first := errs[0]
	if errors.Is(first.Err, context.Canceled) || errors.Is(first.Err, context.DeadlineExceeded) {
		return ctx.Err()
	}
	return fmt.Errorf("failed to poll %s/%d: %w", first.Topic, first.Partition, first.Err)
}

func (c *Consumer) Close() {
	if err := c.processor.Stop(); err != nil {
		c.logger.Warn("failed to stop processor", zap.Error(err))
	}
	c.client.Close()
}

func recordToConsumerMessage(record *kgo.Record) ConsumerMessage {
	msg := ConsumerMessage{
		Topic:     record.Topic,
		Partition: record.Partition,
		Offset:    record.Offset,
		Key:       record.Key,
		Value:     record.Value,
		Timestamp: record.Timestamp,
	}
	if len(record.Headers) > 0 {
		msg.Headers = make(map[string][]byte, len(record.Headers))
		for _, h := range record.Headers {
			msg.Headers[h.Key] = h.Value
		}
	}
	return msg
}
