// Package metrics registers the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransactionsTotal counts ledger mutations by transaction type and op.
	TransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finflow_transactions_total",
			Help: "Total number of transaction mutations",
		},
		[]string{"type", "op"},
	)

	// HTTPRequestsTotal counts served requests by route pattern and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finflow_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "finflow_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ExportedRowsTotal counts rows appended to the Google Sheets ledger.
	ExportedRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "finflow_exported_rows_total",
			Help: "Total number of transactions exported to Google Sheets",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(TransactionsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(ExportedRowsTotal)
}

// RecordTransaction counts one mutation of a transaction of type typ.
func RecordTransaction(typ, op string) {
	if typ == "" {
		typ = "all"
	}
	TransactionsTotal.WithLabelValues(typ, op).Inc()
}

func RecordHTTP(method, route string, status int, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func RecordExport(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ExportedRowsTotal.WithLabelValues(result).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
