package prometheus

import (
	"time"

	"github.com/Phambanam/tram-che-bien-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Authentication metrics
	LoginCounter      prometheus.Counter
	AuthErrorsCounter prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Supply workflow metrics
	SupplyOperationsCounter prometheus.CounterVec

	// Supply output metrics
	OutputOperationsCounter prometheus.CounterVec

	// Inventory metrics
	StockAvailabilityGauge prometheus.GaugeVec
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(config *config.Config) {
	// Use metric prefix from configuration
	prefix := config.Metrics.Prefix

	// HTTP request metrics
	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTP request duration
	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	LoginCounter = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_login_attempts_total",
			Help: "Total number of login attempts",
		},
	)

	AuthErrorsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)

	// Database operation metrics
	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// Supply workflow metrics
	SupplyOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_supply_operations_total",
			Help: "Total number of supply lifecycle operations",
		},
		[]string{"operation"},
	)

	// Supply output metrics
	OutputOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_output_operations_total",
			Help: "Total number of supply output operations",
		},
		[]string{"operation"},
	)

	// Inventory metrics
	StockAvailabilityGauge = *promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: prefix + "_stock_available",
			Help: "Current non-expired inventory level per product",
		},
		[]string{"product_id"},
	)
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordAuthError increments the auth error counter for the given reason
func RecordAuthError(reason string) {
	AuthErrorsCounter.WithLabelValues(reason).Inc()
}

// RecordSupplyOperation increments the counter for supply lifecycle operations
func RecordSupplyOperation(operation string) {
	SupplyOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordOutputOperation increments the counter for supply output operations
func RecordOutputOperation(operation string) {
	OutputOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateStockAvailability updates the availability gauge for a product
func UpdateStockAvailability(productID string, available float64) {
	StockAvailabilityGauge.WithLabelValues(productID).Set(available)
}
