package trade

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

var (
	// ErrInvalidAmount is returned when a trade amount is not strictly positive.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidPrice is returned when a trade price is not strictly positive.
	ErrInvalidPrice = errors.New("invalid price")
)

// ID is the keccak256 digest that addresses a trade in the ledger.
type ID = common.Hash

const maxQuantityBits = 256

type Trade struct {
	Symbol    string
	Amount    *big.Int
	Price     *big.Int
	Timestamp uint64
	Trader    common.Address
}

// New builds a trade record owning its own copies of amount and price.
func New(trader common.Address, symbol string, amount, price *big.Int, timestamp uint64) Trade {
	return Trade{
		Symbol:    symbol,
		Amount:    cloneInt(amount),
		Price:     cloneInt(price),
		Timestamp: timestamp,
		Trader:    trader,
	}
}

// Validate rejects non-positive quantities. Amount is checked first.
// Quantities wider than 256 bits cannot be encoded and are rejected too.
func Validate(amount, price *big.Int) error {
	if !positive(amount) {
		return ErrInvalidAmount
	}
	if !positive(price) {
		return ErrInvalidPrice
	}
	return nil
}

func positive(n *big.Int) bool {
	return n != nil && n.Sign() > 0 && n.BitLen() <= maxQuantityBits
}

// ComputeID hashes the tightly packed (trader, symbol, amount, price, timestamp)
// tuple: 20 address bytes, raw symbol bytes, then three 32-byte big-endian words.
func ComputeID(trader common.Address, symbol string, amount, price *big.Int, timestamp uint64) ID {
	return crypto.Keccak256Hash(
		trader.Bytes(),
		[]byte(symbol),
		word(amount),
		word(price),
		word(new(big.Int).SetUint64(timestamp)),
	)
}

func word(n *big.Int) []byte {
	if n == nil {
		return make([]byte, 32)
	}
	return common.LeftPadBytes(n.Bytes(), 32)
}

func (t Trade) ID() ID {
	return ComputeID(t.Trader, t.Symbol, t.Amount, t.Price, t.Timestamp)
}

// Clone returns a deep copy so callers never share big.Int state with the ledger.
func (t Trade) Clone() Trade {
	t.Amount = cloneInt(t.Amount)
	t.Price = cloneInt(t.Price)
	return t
}

func cloneInt(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(n)
}

type tradeJSON struct {
	Symbol    string         `json:"symbol"`
	Amount    string         `json:"amount"`
	Price     string         `json:"price"`
	Timestamp uint64         `json:"timestamp"`
	Trader    common.Address `json:"trader"`
}

func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(tradeJSON{
		Symbol:    t.Symbol,
		Amount:    intString(t.Amount),
		Price:     intString(t.Price),
		Timestamp: t.Timestamp,
		Trader:    t.Trader,
	})
}

func (t *Trade) UnmarshalJSON(data []byte) error {
	var raw tradeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount, err := ParseQuantity(raw.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	price, err := ParseQuantity(raw.Price)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	*t = Trade{
		Symbol:    raw.Symbol,
		Amount:    amount,
		Price:     price,
		Timestamp: raw.Timestamp,
		Trader:    raw.Trader,
	}
	return nil
}

func (t Trade) ToJSON() ([]byte, error) {
	return json.Marshal(t)
}

func FromJSON(data []byte) (Trade, error) {
	var t Trade
	err := json.Unmarshal(data, &t)
	return t, err
}

// ParseQuantity parses a base-10 integer. An empty string is zero.
func ParseQuantity(s string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("not a base-10 integer: %q", s)
	}
	return n, nil
}

func intString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}

// TradeRecorded is the notification emitted once per successful recording.
type TradeRecorded struct {
	ID     ID
	Symbol string
	Amount *big.Int
	Price  *big.Int
}

// Event wraps a TradeRecorded notification with delivery metadata.
// Sequence follows the ledger's append order and starts at 1.
type Event struct {
	TradeRecorded
	EventID    uuid.UUID
	Sequence   uint64
	Trader     common.Address
	RecordedAt time.Time
}

func NewEvent(id ID, t Trade, seq uint64, at time.Time) Event {
	return Event{
		TradeRecorded: TradeRecorded{
			ID:     id,
			Symbol: t.Symbol,
			Amount: cloneInt(t.Amount),
			Price:  cloneInt(t.Price),
		},
		EventID:    uuid.New(),
		Sequence:   seq,
		Trader:     t.Trader,
		RecordedAt: at,
	}
}

type eventJSON struct {
	EventID    uuid.UUID      `json:"event_id"`
	Sequence   uint64         `json:"sequence"`
	ID         ID             `json:"id"`
	Symbol     string         `json:"symbol"`
	Amount     string         `json:"amount"`
	Price      string         `json:"price"`
	Trader     common.Address `json:"trader"`
	RecordedAt time.Time      `json:"recorded_at"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventJSON{
		EventID:    e.EventID,
		Sequence:   e.Sequence,
		ID:         e.ID,
		Symbol:     e.Symbol,
		Amount:     intString(e.Amount),
		Price:      intString(e.Price),
		Trader:     e.Trader,
		RecordedAt: e.RecordedAt,
	})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	amount, err := ParseQuantity(raw.Amount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	price, err := ParseQuantity(raw.Price)
	if err != nil {
		return fmt.Errorf("price: %w", err)
	}

	*e = Event{
		TradeRecorded: TradeRecorded{
			ID:     raw.ID,
			Symbol: raw.Symbol,
			Amount: amount,
			Price:  price,
		},
		EventID:    raw.EventID,
		Sequence:   raw.Sequence,
		Trader:     raw.Trader,
		RecordedAt: raw.RecordedAt,
	}
	return nil
}
