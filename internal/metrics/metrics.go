// Package metrics holds the prometheus collectors of the customer data service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "customerdataservice"

// Error kinds recorded by ObserveError.
const (
	KindEmailExists = "emailexists"
	KindNotFound    = "notfound"
	KindException   = "exception"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Customer service operations by name",
	}, []string{"operation"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Customer service operation latency in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Customer service failures by operation and kind",
	}, []string{"operation", "kind"}) // kind=emailexists|notfound|exception

	seededCustomers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seeded_customers_total",
		Help:      "Customers processed by the initial data loader",
	}, []string{"outcome"}) // outcome=success|failure
)

// ObserveOperation counts one call of operation and records its latency.
// Typical use: defer metrics.ObserveOperation("savecustomer", time.Now()).
func ObserveOperation(operation string, start time.Time) {
	operationsTotal.WithLabelValues(operation).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ObserveError counts a failed operation.
func ObserveError(operation, kind string) {
	operationErrors.WithLabelValues(operation, kind).Inc()
}

// ObserveSeed counts a customer handled by the seed loader.
func ObserveSeed(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	seededCustomers.WithLabelValues(outcome).Inc()
}
