package streaming

//go:generate mockgen -destination=mock_kafka_client_test.go -package=streaming . kafkaClient

import (
	"context"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string][]byte
}

type Option func(*config)

type config struct {
	brokers  []string
	clientID string
	franzOpt []kgo.Opt
}

func WithBrokers(brokers ...string) Option {
	return func(c *config) {
		c.brokers = brokers
	}
}

func WithClientID(clientID string) Option {
	return func(c *config) {
		c.clientID = clientID
	}
}

// WithRetries bounds how many times a record is retried before it fails.
func WithRetries(n int) Option {
	return func(c *config) {
		c.franzOpt = append(c.franzOpt, kgo.RecordRetries(n))
	}
}

// WithRequestRetries bounds retries of retryable broker requests.
func WithRequestRetries(n int) Option {
	return func(c *config) {
		c.franzOpt = append(c.franzOpt, kgo.RequestRetries(n))
	}
}

func WithConnectionTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.franzOpt = append(c.franzOpt, kgo.DialTimeout(timeout))
	}
}

// WithRetryBackOff backs off exponentially from min up to max between retries.
func WithRetryBackOff(min, max time.Duration) Option {
	return func(c *config) {
		c.franzOpt = append(c.franzOpt, kgo.RetryBackoffFn(func(tries int) time.Duration {
			backoff := min << uint(tries)
			if backoff <= 0 || backoff > max {
				return max
			}
			return backoff
		}))
	}
}

func WithFranzOpt(franzOpt kgo.Opt) Option {
	return func(c *config) {
		c.franzOpt = append(c.franzOpt, franzOpt)
	}
}

func NewProducer(opts ...Option) (*Producer, error) {
	cfg := &config{}

	for _, opt := range opts {
		opt(cfg)
	}

	franzOpts := []kgo.Opt{
		kgo.SeedBrokers(cfg.brokers...),
		kgo.ClientID(cfg.clientID),
	}

	franzOpts = append(franzOpts, cfg.franzOpt...)

	franz, err := kgo.NewClient(franzOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	return &Producer{client: franz}, nil
}

type kafkaClient interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
	Produce(ctx context.Context, record *kgo.Record, callback func(*kgo.Record, error))
	Close()
}

type Producer struct {
	client kafkaClient
}

func (p *Producer) ProduceSync(
	ctx context.Context,
	msg *Message,
) error {
	record := p.messageToRecord(msg)
	return p.client.ProduceSync(ctx, record).FirstErr()
}

func (p *Producer) ProduceAsync(ctx context.Context, msg *Message, callback func(error)) {
	record := p.messageToRecord(msg)
	p.client.Produce(ctx, record, func(record *kgo.Record, err error) {
		if callback != nil {
			callback(err)
		}
	})
}

func (p *Producer) messageToRecord(msg *Message) *kgo.Record {
	record := &kgo.Record{
		Topic: msg.Topic,
		Key:   msg.Key,
		Value: msg.Value,
	}

	if len(msg.Headers) > 0 {
		record.Headers = make([]kgo.RecordHeader, 0, len(msg.Headers))
		for k, v := range msg.Headers {
			record.Headers = append(
				record.Headers,
				kgo.RecordHeader{
					Key:   k,
					Value: v,
				},
			)
		}
	}

	return record
}

func (p *Producer) Close() {
	p.client.Close()
}
