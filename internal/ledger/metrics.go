package ledger

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"kolangkoding.com/tradeledger/internal/trade"
)

const (
	reasonAmount = "invalid_amount"
	reasonPrice  = "invalid_price"
	reasonStore  = "store"
)

type metrics struct {
	recorded prometheus.Counter
	rejected *prometheus.CounterVec
}

// newMetrics registers the ledger collectors on reg. A nil reg keeps them
// unregistered so several ledgers can coexist in tests.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		recorded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledger_trades_recorded_total",
			Help: "Trades successfully recorded.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_trades_rejected_total",
			Help: "Trade submissions rejected, by reason.",
		}, []string{"reason"}),
	}

	if reg != nil {
		reg.MustRegister(m.recorded, m.rejected)
	}
	return m
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, trade.ErrInvalidAmount):
		return reasonAmount
	case errors.Is(err, trade.ErrInvalidPrice):
		return reasonPrice
	default:
		return "unknown"
	}
}
