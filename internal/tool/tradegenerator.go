package tool

import (
	"fmt"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"kolangkoding.com/tradeledger/internal/identity"
	"kolangkoding.com/tradeledger/internal/trade"
)

var symbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA",
	"NVDA", "META", "NFLX", "AMD", "INTC",
}

// base prices in cents
var basePrices = map[string]int64{
	"AAPL":  18550,
	"MSFT":  37885,
	"GOOGL": 14025,
	"AMZN":  14575,
	"TSLA":  24850,
	"NVDA":  87525,
	"META":  51575,
	"NFLX":  48525,
	"AMD":   14285,
	"INTC":  2345,
}

// SignedSubmission is a submission body together with the identity headers a
// trader attaches to it.
type SignedSubmission struct {
	Trader     common.Address
	Submission trade.Submission
	Body       []byte
	Signature  string
}

type GeneratorOption func(*TradeGenerator)

// WithSigners replaces the generated trader pool.
func WithSigners(signers ...*identity.Signer) GeneratorOption {
	return func(g *TradeGenerator) {
		g.signers = signers
	}
}

// WithInvalidRate makes a fraction of the generated submissions carry a zero
// amount so the ledger's rejection path gets traffic too.
func WithInvalidRate(rate float64) GeneratorOption {
	return func(g *TradeGenerator) {
		g.invalidRate = rate
	}
}

func WithSeed(seed int64) GeneratorOption {
	return func(g *TradeGenerator) {
		g.rand = rand.New(rand.NewSource(seed))
	}
}

// NewTradeGenerator creates a generator over traders fresh signer keys unless
// WithSigners is given.
func NewTradeGenerator(traders int, opts ...GeneratorOption) (*TradeGenerator, error) {
	prices := make(map[string]int64, len(basePrices))
	for symbol, price := range basePrices {
		prices[symbol] = price
	}

	g := &TradeGenerator{
		symbols:       symbols,
		prices:        prices,
		traderCounter: make(map[common.Address]uint64),
		rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(g)
	}

	if len(g.signers) == 0 {
		if traders <= 0 {
			traders = 1
		}
		for i := 0; i < traders; i++ {
			signer, err := identity.GenerateSigner()
			if err != nil {
				return nil, fmt.Errorf("failed to generate trader key: %w", err)
			}
			g.signers = append(g.signers, signer)
		}
	}

	return g, nil
}

type TradeGenerator struct {
	symbols       []string
	prices        map[string]int64
	signers       []*identity.Signer
	invalidRate   float64
	counter       int64
	traderCounter map[common.Address]uint64
	rand          *rand.Rand
	mutex         sync.Mutex
}

func (g *TradeGenerator) Traders() []common.Address {
	out := make([]common.Address, len(g.signers))
	for i, s := range g.signers {
		out[i] = s.Address()
	}
	return out
}

// Generate returns a signed submission from a random trader. Timestamps are
// monotonic per trader.
func (g *TradeGenerator) Generate() (SignedSubmission, error) {
	g.mutex.Lock()
	g.counter++
	signer := g.signers[g.rand.Intn(len(g.signers))]
	symbol := g.symbols[g.rand.Intn(len(g.symbols))]

	g.traderCounter[signer.Address()]++
	traderSeq := g.traderCounter[signer.Address()]

	price := g.generatePrice(symbol)
	volume := g.generateVolume()
	if g.rand.Float64() < g.invalidRate {
		volume = 0
	}
	g.mutex.Unlock()

	baseTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	timestamp := uint64(baseTime.Add(time.Duration(traderSeq) * time.Millisecond).UnixMilli())

	sub := trade.NewSubmission(symbol, big.NewInt(volume), big.NewInt(price), timestamp)
	body, err := sub.ToJSON()
	if err != nil {
		return SignedSubmission{}, fmt.Errorf("failed to encode submission: %w", err)
	}
	sig, err := signer.SignHex(body)
	if err != nil {
		return SignedSubmission{}, fmt.Errorf("failed to sign submission: %w", err)
	}

	return SignedSubmission{
		Trader:     signer.Address(),
		Submission: sub,
		Body:       body,
		Signature:  sig,
	}, nil
}

func (g *TradeGenerator) generatePrice(symbol string) int64 {
	basePrice := g.prices[symbol]

	// Random price movement: ±2% of base price
	variation := int64((g.rand.Float64() - 0.5) * 0.04 * float64(basePrice))
	newPrice := basePrice + variation
	if newPrice < 1 {
		newPrice = 1
	}

	// Update stored price for next trade (creates trending)
	g.prices[symbol] = newPrice

	return newPrice
}

func (g *TradeGenerator) generateVolume() int64 {
	// Generate volume between 100 and 10,000 shares
	// Most trades are small, some are large
	if g.rand.Float64() < 0.8 {
		return int64(100 + g.rand.Intn(900))
	}

	return int64(1000 + g.rand.Intn(9000))
}
