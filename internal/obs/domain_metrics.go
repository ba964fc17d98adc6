package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// OrdersCreatedTotal counts orders successfully reconciled and persisted.
	OrdersCreatedTotal prometheus.Counter
	// OrdersRejectedTotal counts checkout attempts rejected before commit.
	OrdersRejectedTotal *prometheus.CounterVec
	// QuotesTotal counts cart quote (preview) computations.
	QuotesTotal prometheus.Counter
	// SilverRateUpdatesTotal counts admin updates to the live silver rate.
	SilverRateUpdatesTotal prometheus.Counter
	// OrderTotalRupees records the distribution of committed order totals.
	OrderTotalRupees prometheus.Histogram
)

// RejectReason labels for OrdersRejectedTotal.
const (
	RejectReasonValidation        = "validation"
	RejectReasonUnknownProduct    = "unknown_product"
	RejectReasonInsufficientStock = "insufficient_stock"
	RejectReasonInternal          = "internal"
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		OrdersCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_created_total",
			Help:      "Count of orders committed together with their stock decrements.",
		})
		OrdersRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_rejected_total",
			Help:      "Count of rejected checkout attempts by reason.",
		}, []string{"reason"})
		QuotesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_quotes_total",
			Help:      "Count of cart pricing previews served.",
		})
		SilverRateUpdatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "silver_rate_updates_total",
			Help:      "Count of silver rate updates applied by admins.",
		})
		OrderTotalRupees = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_rupees",
			Help:      "Distribution of committed order totals in rupees.",
			Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		})

		mustRegisterCollector(reg, OrdersCreatedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				OrdersCreatedTotal = v
			}
		})
		mustRegisterCollector(reg, OrdersRejectedTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				OrdersRejectedTotal = v
			}
		})
		mustRegisterCollector(reg, QuotesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				QuotesTotal = v
			}
		})
		mustRegisterCollector(reg, SilverRateUpdatesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Counter); ok {
				SilverRateUpdatesTotal = v
			}
		})
		mustRegisterCollector(reg, OrderTotalRupees, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Histogram); ok {
				OrderTotalRupees = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, replace func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			replace(are.ExistingCollector)
			return
		}
		panic(fmt.Errorf("register collector: %w", err))
	}
}
