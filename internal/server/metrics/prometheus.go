package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	startTime = time.Now()

	// UptimeSeconds tracks the backend uptime in seconds
	UptimeSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "uptime_seconds",
		Help:      "The uptime of the backend in seconds",
	})

	// Total HTTP Request metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "endpoint", "status"})

	// HTTP Request duration metrics
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "endpoint"})

	// Active HTTP requests
	ActiveRequests = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "active_requests",
		Help:      "Currently active HTTP requests",
	}, []string{"endpoint"})

	// Panic recoveries
	PanicRecoveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "panic_recoveries_total",
		Help:      "Total panics recovered by middleware",
	}, []string{"endpoint"})

	// Database operation metrics
	DatabaseOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "database_operations_total",
		Help:      "Total store operations performed",
	}, []string{"operation", "table", "status"})

	// Database operation duration
	DatabaseOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "database_operation_duration_seconds",
		Help:      "Store operation execution time",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
	}, []string{"operation", "table"})

	// Dispatch metrics
	BucketsLeasedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "dispatch",
		Name:      "buckets_leased_total",
		Help:      "Total bucket leases granted",
	})

	BucketsResumedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "dispatch",
		Name:      "buckets_resumed_total",
		Help:      "Bucket leases resumed by a reconnecting worker",
	})

	NextChunkDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "dispatch",
		Name:      "next_chunk_denials_total",
		Help:      "next-chunk requests denied, by reason",
	}, []string{"reason"})

	BucketsFinishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "dispatch",
		Name:      "buckets_finished_total",
		Help:      "Terminal bucket results recorded, by status",
	}, []string{"status"})

	PayoutsIssuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "accounting",
		Name:      "payouts_issued_total",
		Help:      "Bucket payouts settled",
	})

	PayoutAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "accounting",
		Name:      "payout_amount_total",
		Help:      "Money moved by settled payouts, by beneficiary",
	}, []string{"beneficiary"})

	HeartbeatsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taskrunner",
		Subsystem: "dispatch",
		Name:      "heartbeats_total",
		Help:      "Worker heartbeats received",
	})

	// System metrics
	MemoryUsageBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "memory_usage_bytes",
		Help:      "System memory in use",
	})

	CPUUsagePercent = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "cpu_usage_percent",
		Help:      "CPU utilisation percentage",
	})

	GoroutinesActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taskrunner",
		Subsystem: "server",
		Name:      "goroutines_active",
		Help:      "Number of active goroutines",
	})
)
