package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"

	"kolangkoding.com/tradeledger/internal/common/streaming"
	"kolangkoding.com/tradeledger/internal/identity"
	"kolangkoding.com/tradeledger/internal/ingest"
	"kolangkoding.com/tradeledger/internal/tool"
	"kolangkoding.com/tradeledger/internal/trade"
)

type sender interface {
	Send(ctx context.Context, s tool.SignedSubmission) error
	Close()
}

func main() {
	var (
		mode     = flag.String("mode", "kafka", "Transport: kafka or http")
		brokers  = flag.String("brokers", "localhost:19092", "Kafka brokers")
		topic    = flag.String("topic", "trade-submissions", "Topic to produce to")
		endpoint = flag.String("endpoint", "http://localhost:8080", "ledgerd base URL for -mode=http")
		traders  = flag.Int("traders", 10, "Number of trader keys to sign with")
		invalid  = flag.Float64("invalid", 0, "Fraction of submissions sent with a zero amount")
		count    = flag.Int("count", 1000, "Number of trades to produce")
		rate     = flag.Int("rate", 100, "Trades per second (0 = unlimited)")
		duration = flag.Duration("duration", 0, "Run for duration instead of count (e.g., 5m)")
		verify   = flag.Bool("verify", false, "With -mode=http, read every recorded trade back and compare it")
	)
	flag.Parse()

	var (
		out sender
		err error
	)
	switch *mode {
	case "kafka":
		out, err = newKafkaSender(strings.Split(*brokers, ","), *topic)
	case "http":
		out = newHTTPSender(*endpoint, *verify)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		log.Fatalf("Failed to create sender: %v", err)
	}
	defer out.Close()

	generator, err := tool.NewTradeGenerator(*traders, tool.WithInvalidRate(*invalid))
	if err != nil {
		log.Fatalf("Failed to create generator: %v", err)
	}

	fmt.Printf("📈 Starting Trade Producer\n")
	fmt.Printf("   Mode: %s\n", *mode)
	if *mode == "kafka" {
		fmt.Printf("   Topic: %s\n", *topic)
	} else {
		fmt.Printf("   Endpoint: %s\n", *endpoint)
		fmt.Printf("   Verify: %t\n", *verify)
	}
	fmt.Printf("   Traders: %d\n", len(generator.Traders()))
	if *duration > 0 {
		fmt.Printf("   Duration: %v\n", *duration)
	} else {
		fmt.Printf("   Count: %d trades\n", *count)
	}
	fmt.Printf("   Rate: %d trades/sec%s\n", *rate, func() string {
		if *rate == 0 {
			return " (unlimited)"
		}
		return ""
	}())
	fmt.Println()

	ctx := context.Background()
	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *duration)
		defer cancel()
	}

	var sent int64
	var errors int64
	start := time.Now()

	// Rate limiter
	var ticker *time.Ticker
	if *rate > 0 {
		ticker = time.NewTicker(time.Second / time.Duration(*rate))
		defer ticker.Stop()
	}

	// Progress reporter
	done := make(chan bool)
	go func() {
		reportTicker := time.NewTicker(5 * time.Second)
		defer reportTicker.Stop()

		for {
			select {
			case <-reportTicker.C:
				currentSent := atomic.LoadInt64(&sent)
				currentErrors := atomic.LoadInt64(&errors)
				if currentSent > 0 {
					elapsed := time.Since(start).Seconds()
					rate := float64(currentSent) / elapsed
					fmt.Printf("📊 Progress: %d sent, %d errors, %.1f trades/sec\n",
						currentSent, currentErrors, rate)
				}
			case <-done:
				return
			}
		}
	}()

	for i := 0; i < *count || *duration > 0; i++ {
		if ctx.Err() != nil {
			break
		}

		if ticker != nil {
			select {
			case <-ticker.C:
			case <-ctx.Done():
			}
			if ctx.Err() != nil {
				break
			}
		}

		submission, err := generator.Generate()
		if err == nil {
			err = out.Send(ctx, submission)
		}
		if err != nil {
			if atomic.AddInt64(&errors, 1)%100 == 1 { // Log every 100th error
				log.Printf("Error sending trade: %v", err)
			}
			continue
		}
		atomic.AddInt64(&sent, 1)
	}

	done <- true

	finalSent := atomic.LoadInt64(&sent)
	finalErrors := atomic.LoadInt64(&errors)
	totalDuration := time.Since(start)

	fmt.Printf("\n🎉 Trade Production Complete!\n")
	fmt.Printf("   Total Trades: %d\n", finalSent)
	fmt.Printf("   Errors: %d\n", finalErrors)
	fmt.Printf("   Duration: %v\n", totalDuration)
	fmt.Printf("   Average Rate: %.1f trades/sec\n", float64(finalSent)/totalDuration.Seconds())
	if finalSent > 0 {
		fmt.Printf("   Success Rate: %.2f%%\n", float64(finalSent)*100/float64(finalSent+finalErrors))
	}
}

type kafkaSender struct {
	producer *streaming.Producer
	topic    string
}

func newKafkaSender(brokers []string, topic string) (*kafkaSender, error) {
	producer, err := streaming.NewProducer(
		streaming.WithBrokers(brokers...),
		streaming.WithClientID("trade-producer"),
		streaming.WithRetries(2),
		streaming.WithRequestRetries(2),
		streaming.WithConnectionTimeout(5*time.Second),
		streaming.WithRetryBackOff(100*time.Millisecond, 1*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &kafkaSender{producer: producer, topic: topic}, nil
}

// Send keys by trader so each trader's submissions stay on one partition.
func (k *kafkaSender) Send(ctx context.Context, s tool.SignedSubmission) error {
	return k.producer.ProduceSync(ctx, &streaming.Message{
		Topic: k.topic,
		Key:   []byte(s.Trader.Hex()),
		Value: s.Body,
		Headers: map[string][]byte{
			ingest.HeaderTrader:    []byte(s.Trader.Hex()),
			ingest.HeaderSignature: []byte(s.Signature),
		},
	})
}

func (k *kafkaSender) Close() {
	k.producer.Close()
}

type httpSender struct {
	client *resty.Client
	verify bool
}

type errorResponse struct {
	Error string `json:"error"`
}

func newHTTPSender(endpoint string, verify bool) *httpSender {
	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(5*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(100*time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetHeader("Content-Type", "application/json")
	return &httpSender{client: client, verify: verify}
}

func (h *httpSender) Send(ctx context.Context, s tool.SignedSubmission) error {
	var (
		created struct {
			ID trade.ID `json:"id"`
		}
		failure errorResponse
	)

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader(identity.HeaderAddress, s.Trader.Hex()).
		SetHeader(identity.HeaderSignature, s.Signature).
		SetBody(s.Body).
		SetResult(&created).
		SetError(&failure).
		Post("/v1/trades")
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusCreated {
		return fmt.Errorf("ledgerd returned %d: %s", resp.StatusCode(), failure.Error)
	}

	if !h.verify {
		return nil
	}
	return h.verifyRecorded(ctx, s, created.ID)
}

// verifyRecorded checks that the returned identifier is the one the trade
// hashes to and that reading it back yields the submitted fields.
func (h *httpSender) verifyRecorded(ctx context.Context, s tool.SignedSubmission, id trade.ID) error {
	amount, price, err := s.Submission.Quantities()
	if err != nil {
		return fmt.Errorf("failed to verify %s: %w", id.Hex(), err)
	}
	want := trade.ComputeID(s.Trader, s.Submission.Symbol, amount, price, s.Submission.Timestamp)
	if id != want {
		return fmt.Errorf("ledgerd returned id %s, expected %s", id.Hex(), want.Hex())
	}

	var (
		stored  trade.Submission
		failure errorResponse
	)
	resp, err := h.client.R().
		SetContext(ctx).
		SetResult(&stored).
		SetError(&failure).
		Get("/v1/trades/" + id.Hex())
	if err != nil {
		return err
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ledgerd returned %d reading %s: %s", resp.StatusCode(), id.Hex(), failure.Error)
	}
	if stored != s.Submission {
		return fmt.Errorf("trade %s read back as %+v, submitted %+v", id.Hex(), stored, s.Submission)
	}
	return nil
}

func (h *httpSender) Close() {}
