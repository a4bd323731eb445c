package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TransactionsProcessed counts finalized payment attempts by terminal status.
	TransactionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acquirer_transactions_processed_total",
		Help: "Payment attempts finalized, labeled by terminal status.",
	}, []string{"status"})

	// IssuerDecisions counts issuer authorization outcomes by response code.
	IssuerDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "acquirer_issuer_decisions_total",
		Help: "Issuer authorization decisions, labeled by response code.",
	}, []string{"code"})

	// ProcessingDuration observes end-to-end pipeline latency.
	ProcessingDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "acquirer_payment_processing_seconds",
		Help:    "Duration of the payment processing pipeline.",
		Buckets: prometheus.DefBuckets,
	})
)
