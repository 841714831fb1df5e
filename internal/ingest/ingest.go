// Package ingest applies signed trade submissions read from Kafka to the
// ledger.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"kolangkoding.com/tradeledger/internal/common/streaming"
	"kolangkoding.com/tradeledger/internal/config"
	"kolangkoding.com/tradeledger/internal/identity"
	"kolangkoding.com/tradeledger/internal/trade"
)

// Kafka record headers carrying the caller identity of a submission.
const (
	HeaderTrader    = "trader"
	HeaderSignature = "signature"
)

var ErrMissingIdentity = errors.New("submission has no trader identity")

type Recorder interface {
	RecordTrade(
		ctx context.Context,
		caller common.Address,
		symbol string,
		amount, price *big.Int,
		timestamp uint64,
	) (trade.ID, error)
}

type Handler struct {
	recorder Recorder
	logger   *zap.Logger
}

func NewHandler(recorder Recorder, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{recorder: recorder, logger: logger}
}

// Handle records one submission. Malformed, unauthenticated and invalid
// submissions are logged and skipped; any other failure is returned and
// stops consumption.
func (h *Handler) Handle(ctx context.Context, msg streaming.ConsumerMessage) error {
	caller, sub, err := h.decode(msg)
	if err == nil {
		err = h.record(ctx, caller, sub)
	}

	if err == nil || !isCallerError(err) {
		return err
	}

	h.logger.Warn("skipping submission",
		zap.String("topic", msg.Topic),
		zap.Int32("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.ByteString("key", msg.Key),
		zap.Error(err))
	return nil
}

func (h *Handler) decode(msg streaming.ConsumerMessage) (common.Address, trade.Submission, error) {
	rawTrader, sig := msg.Headers[HeaderTrader], msg.Headers[HeaderSignature]
	if len(rawTrader) == 0 || len(sig) == 0 {
		return common.Address{}, trade.Submission{}, ErrMissingIdentity
	}

	caller, err := identity.ParseAddress(string(rawTrader))
	if err != nil {
		return common.Address{}, trade.Submission{}, err
	}
	if err := identity.Verify(msg.Value, string(sig), caller); err != nil {
		return common.Address{}, trade.Submission{}, err
	}

	sub, err := trade.DecodeSubmission(msg.Value)
	if err != nil {
		return common.Address{}, trade.Submission{}, errMalformed{err}
	}
	return caller, sub, nil
}

func (h *Handler) record(ctx context.Context, caller common.Address, sub trade.Submission) error {
	amount, price, err := sub.Quantities()
	if err != nil {
		return err
	}

	id, err := h.recorder.RecordTrade(ctx, caller, sub.Symbol, amount, price, sub.Timestamp)
	if err != nil {
		return err
	}

	h.logger.Debug("submission applied", zap.Stringer("id", id), zap.Stringer("trader", caller))
	return nil
}

type errMalformed struct{ err error }

func (e errMalformed) Error() string { return e.err.Error() }
func (e errMalformed) Unwrap() error { return e.err }

func isCallerError(err error) bool {
	var malformed errMalformed
	switch {
	case errors.As(err, &malformed),
		errors.Is(err, ErrMissingIdentity),
		errors.Is(err, identity.ErrMalformedAddress),
		errors.Is(err, identity.ErrMalformedSignature),
		errors.Is(err, identity.ErrSignatureMismatch),
		errors.Is(err, trade.ErrInvalidAmount),
		errors.Is(err, trade.ErrInvalidPrice):
		return true
	}
	return false
}

type consumer interface {
	Consume(ctx context.Context, handler streaming.MessageHandler) error
	Close()
}

// Service consumes the submissions topic. Records are keyed by trader so a
// trader's submissions are applied in offset order while different traders
// are applied concurrently.
type Service struct {
	consumer consumer
	handler  *Handler
	logger   *zap.Logger
}

func New(cfg config.KafkaConfig, recorder Recorder, logger *zap.Logger) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("ingest")

	processor := &streaming.KeyOrderedProcessor{MaxWorkers: cfg.Workers, Logger: logger}
	c, err := streaming.NewConsumer(
		processor,
		streaming.WithConsumerBrokers(cfg.Brokers...),
		streaming.WithConsumerGroup(cfg.Group),
		streaming.WithTopic(cfg.SubmissionsTopic),
		streaming.WithConsumerClientID(cfg.ClientID+"-ingest"),
		streaming.WithConsumerLogger(logger),
		streaming.WithManualCommit(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create submissions consumer: %w", err)
	}

	return &Service{
		consumer: c,
		handler:  NewHandler(recorder, logger),
		logger:   logger,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	s.logger.Info("consuming submissions")
	err := s.consumer.Consume(ctx, s.handler.Handle)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("submission consumer stopped: %w", err)
	}
	return nil
}

func (s *Service) Close() {
	s.consumer.Close()
}
