package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Observer metrics
	ObserversConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starhunt_observers_connected",
			Help: "Number of currently registered observer connections",
		},
	)

	ObserversAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "starhunt_observers_accepted_total",
			Help: "Total number of observer connections accepted",
		},
	)

	ObserversPeak = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starhunt_observers_peak",
			Help: "Highest number of concurrent observer connections since start",
		},
	)

	// Message metrics
	MessagesReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starhunt_messages_received_total",
			Help: "Total number of inbound observer messages by type",
		},
		[]string{"type"},
	)

	MessagesRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starhunt_messages_rejected_total",
			Help: "Total number of inbound messages dropped by reason",
		},
		[]string{"reason"},
	)

	MessageRate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starhunt_message_rate",
			Help: "Inbound messages per second over the last stats interval",
		},
	)

	// Fan-out metrics
	BroadcastsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starhunt_broadcasts_total",
			Help: "Total number of broadcasts by message type",
		},
		[]string{"type"},
	)

	SendsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "starhunt_sends_skipped_total",
			Help: "Total number of sends skipped because the connection was closed or full",
		},
	)

	// Star metrics
	StarsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "starhunt_stars_active",
			Help: "Number of star records currently held",
		},
	)

	StarsEvicted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starhunt_stars_evicted_total",
			Help: "Total number of star records evicted by reason",
		},
		[]string{"reason"},
	)

	SweepDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "starhunt_sweep_duration_seconds",
			Help:    "Time taken by one expiry sweep in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Metadata metrics
	MetadataRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "starhunt_metadata_refresh_total",
			Help: "Total number of metadata refresh attempts by source and result",
		},
		[]string{"source", "result"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ObserversConnected)
	prometheus.MustRegister(ObserversAccepted)
	prometheus.MustRegister(ObserversPeak)
	prometheus.MustRegister(MessagesReceived)
	prometheus.MustRegister(MessagesRejected)
	prometheus.MustRegister(MessageRate)
	prometheus.MustRegister(BroadcastsTotal)
	prometheus.MustRegister(SendsSkipped)
	prometheus.MustRegister(StarsActive)
	prometheus.MustRegister(StarsEvicted)
	prometheus.MustRegister(SweepDuration)
	prometheus.MustRegister(MetadataRefreshes)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
