package observer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// PdusReceivedTotal counts every PDU handed over by the radio, before
	// decode.
	PdusReceivedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sms_contact_service_pdus_received_total",
			Help: "Total number of SMS PDUs received in inbound delivery events.",
		},
	)

	// PdusSkippedTotal counts PDUs dropped during ingestion, by reason.
	PdusSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_contact_service_pdus_skipped_total",
			Help: "Total number of inbound PDUs skipped, labeled by reason.",
		},
		[]string{"reason"},
	)

	// MessagesPersistedTotal counts stored messages by direction.
	MessagesPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_contact_service_messages_persisted_total",
			Help: "Total number of messages written to storage, labeled by direction (in/out).",
		},
		[]string{"direction"},
	)

	// ContactsAutoCreatedTotal counts placeholder contacts synthesized for
	// unknown senders.
	ContactsAutoCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sms_contact_service_contacts_auto_created_total",
			Help: "Total number of contacts created automatically for unknown senders.",
		},
	)

	// RadioSubmitTotal counts outbound radio submissions by outcome.
	RadioSubmitTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sms_contact_service_radio_submit_total",
			Help: "Total number of outbound radio submissions, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	// DbOperationDurationSeconds observes storage operation latency.
	DbOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sms_contact_service_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "entity", "status"},
	)
)

// InitMetrics enables or disables metric collection globally.
func InitMetrics(enabled bool) {
	metricsEnabled = enabled
}

// IncPdusReceived increments the received-PDU counter by n.
func IncPdusReceived(n int) {
	if !metricsEnabled {
		return
	}
	PdusReceivedTotal.Add(float64(n))
}

// IncPduSkipped increments the skipped-PDU counter for a reason.
func IncPduSkipped(reason string) {
	if !metricsEnabled {
		return
	}
	PdusSkippedTotal.WithLabelValues(reason).Inc()
}

// IncMessagePersisted increments the persisted-message counter for a direction.
func IncMessagePersisted(direction string) {
	if !metricsEnabled {
		return
	}
	MessagesPersistedTotal.WithLabelValues(direction).Inc()
}

// IncContactAutoCreated increments the auto-created contact counter.
func IncContactAutoCreated() {
	if !metricsEnabled {
		return
	}
	ContactsAutoCreatedTotal.Inc()
}

// IncRadioSubmit increments the radio submission counter for an outcome.
func IncRadioSubmit(outcome string) {
	if !metricsEnabled {
		return
	}
	RadioSubmitTotal.WithLabelValues(outcome).Inc()
}

// ObserveDbOperationDuration records the duration of one storage operation.
func ObserveDbOperationDuration(operation, entity string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DbOperationDurationSeconds.WithLabelValues(operation, entity, status).Observe(duration.Seconds())
}
