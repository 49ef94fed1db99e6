package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChangesEnqueued counts zone changes handed to the work queue, by type.
	ChangesEnqueued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zonecontrol_changes_enqueued_total",
		Help: "Total number of zone changes enqueued for async application",
	}, []string{"change_type"})

	// QueueSendFailures counts enqueue attempts rejected by the broker.
	QueueSendFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "zonecontrol_queue_send_failures_total",
		Help: "Total number of failed queue sends",
	})

	// ConnectionProbes counts live DNS connectivity checks by outcome.
	ConnectionProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "zonecontrol_connection_probes_total",
		Help: "Total number of zone connection probes",
	}, []string{"result"})

	// RequestDuration tracks management API request latency.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zonecontrol_request_duration_seconds",
		Help:    "Histogram of management API request duration",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	// DBConnectionsActive tracks open database connections.
	DBConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "zonecontrol_db_connections_active",
		Help: "Number of active database connections",
	})
)
