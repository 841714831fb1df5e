package store

import (
	"encoding/json"
	"fmt"

	"kolangkoding.com/tradeledger/internal/trade"
)

// logEntry is one element of the persisted append log.
type logEntry struct {
	ID    trade.ID    `json:"id"`
	Trade trade.Trade `json:"trade"`
}

func encodeEntry(id trade.ID, t trade.Trade) ([]byte, error) {
	return json.Marshal(logEntry{ID: id, Trade: t})
}

func decodeEntry(data []byte) (trade.ID, trade.Trade, error) {
	var e logEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return trade.ID{}, trade.Trade{}, fmt.Errorf("%w: %v", ErrCorruptEntry, err)
	}
	return e.ID, e.Trade, nil
}
