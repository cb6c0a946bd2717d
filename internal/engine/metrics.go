package engine

import (
	"errors"

	"github.com/nikolayk812/rocketshoes-cart/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeOK   = "ok"
	outcomeNoop = "noop"
)

// Metrics counts cart operations and store writes. A nil *Metrics records
// nothing.
type Metrics struct {
	operations  *prometheus.CounterVec
	storeWrites *prometheus.CounterVec
}

// NewMetrics registers the cart metrics on the provided registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		return nil
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations_total",
		Help: "Cart operations by outcome.",
	}, []string{"op", "outcome"})
	storeWrites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_store_writes_total",
		Help: "Writes of the cart snapshot to the durable store.",
	}, []string{"outcome"})
	reg.MustRegister(operations, storeWrites)
	return &Metrics{
		operations:  operations,
		storeWrites: storeWrites,
	}
}

func (m *Metrics) observeOp(op domain.Op, outcome string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(op), outcome).Inc()
}

func (m *Metrics) observeWrite(err error) {
	if m == nil {
		return
	}
	outcome := outcomeOK
	if err != nil {
		outcome = "error"
	}
	m.storeWrites.WithLabelValues(outcome).Inc()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return outcomeOK
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrStockQueryFailed):
		return "stock_query_failed"
	case errors.Is(err, domain.ErrCatalogQueryFailed):
		return "catalog_query_failed"
	case errors.Is(err, domain.ErrProductNotInCart):
		return "not_in_cart"
	default:
		return "error"
	}
}
