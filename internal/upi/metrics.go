package upi

import "github.com/prometheus/client_golang/prometheus"

const (
	decisionAccepted          = "accepted"
	decisionBlocked           = "blocked"
	decisionBudgetExceeded    = "budget_exceeded"
	decisionInsufficientFunds = "insufficient_funds"
)

var paymentsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "upi_payments_total",
		Help: "UPI payments checked by the gate, partitioned by decision.",
	},
	[]string{"decision"},
)

var autoBlocksTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "upi_auto_blocks_total",
		Help: "How often UPI was blocked because a payment exceeded a category budget.",
	},
)

// Collectors returns the Prometheus metrics of the gate.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{paymentsTotal, autoBlocksTotal}
}
