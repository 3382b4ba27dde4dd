package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsRecorded counts accepted writes by event type and operation (create/update).
	EventsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_events_recorded_total",
		Help: "The total number of time clock events persisted",
	}, []string{"type", "operation"})

	// EventsRejected counts validation failures by error code.
	EventsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_events_rejected_total",
		Help: "The total number of time clock events rejected by validation",
	}, []string{"code"})

	PublishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_publish_errors_total",
		Help: "The total number of domain events that could not be queued",
	}, []string{"queue"})

	// MessagesProcessed counts worker outcomes per queue.
	MessagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timeclock_messages_processed_total",
		Help: "The total number of queue messages handled by workers",
	}, []string{"queue", "outcome"})

	WriteDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timeclock_write_duration_seconds",
		Help:    "Latency of validated writes including the day lock",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)
