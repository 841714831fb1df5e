package trade

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// Submission is the unsigned request body for recording a trade. The caller
// identity travels next to it (HTTP headers or Kafka record headers) together
// with a signature over the exact encoded body.
type Submission struct {
	Symbol    string `json:"symbol"`
	Amount    string `json:"amount"`
	Price     string `json:"price"`
	Timestamp uint64 `json:"timestamp"`
}

func NewSubmission(symbol string, amount, price *big.Int, timestamp uint64) Submission {
	return Submission{
		Symbol:    symbol,
		Amount:    intString(amount),
		Price:     intString(price),
		Timestamp: timestamp,
	}
}

// Quantities parses amount and price. Parsing errors map onto the matching
// validation error, and amount is reported first like Validate does: an
// unparsable price next to an invalid amount yields ErrInvalidAmount.
func (s Submission) Quantities() (*big.Int, *big.Int, error) {
	amount, amountErr := ParseQuantity(s.Amount)
	price, priceErr := ParseQuantity(s.Price)

	switch {
	case amountErr != nil:
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amountErr)
	case priceErr != nil && !positive(amount):
		return nil, nil, ErrInvalidAmount
	case priceErr != nil:
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidPrice, priceErr)
	}
	return amount, price, nil
}

func (s Submission) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSubmission(data []byte) (Submission, error) {
	var s Submission
	if err := json.Unmarshal(data, &s); err != nil {
		return Submission{}, fmt.Errorf("failed to decode submission: %w", err)
	}
	return s, nil
}
