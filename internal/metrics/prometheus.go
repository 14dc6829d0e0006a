// Package metrics exposes ledger activity as Prometheus collectors. One
// Collector serves as the metrics sink of both the wallet and the
// transaction services.
package metrics

import (
	"time"

	"walletledger/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "walletledger"

type Collector struct {
	gatherer prometheus.Gatherer

	operationDuration *prometheus.HistogramVec
	operationResults  *prometheus.CounterVec
	cacheLookups      *prometheus.CounterVec
	errors            *prometheus.CounterVec

	transactionsCreated *prometheus.CounterVec
	statusChanges       *prometheus.CounterVec
	settlements         *prometheus.CounterVec
	settlementDuration  *prometheus.HistogramVec
}

// NewCollector registers the ledger metrics with reg.
func NewCollector(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		gatherer: reg,
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "wallet_operation_duration_seconds",
				Help:      "Duration of wallet operations",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2, 5},
			},
			[]string{"operation"},
		),
		operationResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wallet_operations_total",
				Help:      "Total number of wallet operations by result",
			},
			[]string{"operation", "result"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "wallet_cache_lookups_total",
				Help:      "Wallet cache lookups by result",
			},
			[]string{"operation", "result"},
		),
		errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Errors by operation and kind",
			},
			[]string{"operation", "kind"},
		),
		transactionsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transactions_created_total",
				Help:      "Transactions queued for settlement",
			},
			[]string{"type"},
		),
		statusChanges: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transaction_status_changes_total",
				Help:      "Published transaction status changes",
			},
			[]string{"status"},
		),
		settlements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "settlements_total",
				Help:      "Settlement attempts by transaction type and outcome",
			},
			[]string{"type", "outcome"},
		),
		settlementDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "settlement_duration_seconds",
				Help:      "Duration of settlement attempts",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{}))
}

// Wallet service

func (c *Collector) RecordOperationDuration(operation string, d time.Duration) {
	c.operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

func (c *Collector) RecordOperationResult(operation, result string) {
	c.operationResults.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordCacheHit(operation string) {
	c.cacheLookups.WithLabelValues(operation, "hit").Inc()
}

func (c *Collector) RecordCacheMiss(operation string) {
	c.cacheLookups.WithLabelValues(operation, "miss").Inc()
}

func (c *Collector) RecordError(operation, kind string) {
	c.errors.WithLabelValues(operation, kind).Inc()
}

// Transaction service

func (c *Collector) RecordTransactionCreated(txType models.TransactionType) {
	c.transactionsCreated.WithLabelValues(string(txType)).Inc()
}

func (c *Collector) RecordStatusChange(status models.TransactionStatus) {
	c.statusChanges.WithLabelValues(string(status)).Inc()
}

func (c *Collector) RecordSettlement(txType models.TransactionType, outcome string, d time.Duration) {
	label := string(txType)
	if label == "" {
		label = "unknown"
	}
	c.settlements.WithLabelValues(label, outcome).Inc()
	c.settlementDuration.WithLabelValues(label).Observe(d.Seconds())
}
