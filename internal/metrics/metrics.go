// Package metrics collects and exposes Prometheus metrics for the library service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Rejection reasons recorded by RecordBorrowingRejected.
const (
	ReasonUnavailable     = "unavailable"
	ReasonAlreadyReturned = "already_returned"
	ReasonNotBorrower     = "not_borrower"
	ReasonNotFound        = "not_found"
)

// Notification delivery results recorded by RecordOverdueNotification.
const (
	ResultDelivered = "delivered"
	ResultFailed    = "failed"
)

// MetricsCollector is what the service, job and HTTP layers report to.
type MetricsCollector interface {
	RecordBorrowingCreated()
	RecordBorrowingReturned()
	RecordBorrowingRejected(reason string)
	RecordOverdueScan()
	RecordOverdueNotification(result string)
	RecordHTTPRequest(route, method string, status int, duration time.Duration)
}

type Collector struct {
	created       prometheus.Counter
	returned      prometheus.Counter
	rejections    *prometheus.CounterVec
	scans         prometheus.Counter
	notifications *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_borrowings_created_total",
			Help: "Number of borrowings created.",
		}),
		returned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_borrowings_returned_total",
			Help: "Number of borrowings closed by a return.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_borrowing_rejections_total",
			Help: "Borrow and return operations rejected, by reason.",
		}, []string{"reason"}),
		scans: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_overdue_scans_total",
			Help: "Number of completed overdue scans.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_overdue_notifications_total",
			Help: "Overdue scan notifications, by delivery result.",
		}, []string{"result"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "library_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method", "status"}),
	}

	reg.MustRegister(
		c.created,
		c.returned,
		c.rejections,
		c.scans,
		c.notifications,
		c.httpDuration,
	)
	return c
}

func (c *Collector) RecordBorrowingCreated()  { c.created.Inc() }
func (c *Collector) RecordBorrowingReturned() { c.returned.Inc() }

func (c *Collector) RecordBorrowingRejected(reason string) {
	c.rejections.WithLabelValues(reason).Inc()
}

func (c *Collector) RecordOverdueScan() { c.scans.Inc() }

func (c *Collector) RecordOverdueNotification(result string) {
	c.notifications.WithLabelValues(result).Inc()
}

func (c *Collector) RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	c.httpDuration.WithLabelValues(route, method, statusClass(status)).Observe(duration.Seconds())
}

// statusClass keeps label cardinality bounded.
func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// Handler returns the scrape endpoint for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop discards everything. Used when metrics are disabled and in tests.
type Nop struct{}

func (Nop) RecordBorrowingCreated()                              {}
func (Nop) RecordBorrowingReturned()                             {}
func (Nop) RecordBorrowingRejected(string)                       {}
func (Nop) RecordOverdueScan()                                   {}
func (Nop) RecordOverdueNotification(string)                     {}
func (Nop) RecordHTTPRequest(string, string, int, time.Duration) {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = Nop{}
)
