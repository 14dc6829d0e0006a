package transaction

import (
	"time"

	"walletledger/internal/models"
)

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordTransactionCreated(models.TransactionType)                {}
func (n *NoopMetricsCollector) RecordStatusChange(models.TransactionStatus)                    {}
func (n *NoopMetricsCollector) RecordSettlement(models.TransactionType, string, time.Duration) {}
func (n *NoopMetricsCollector) RecordError(string, string)                                     {}
