package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seabridge",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total admin HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "seabridge",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Admin HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	queueDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seabridge",
			Name:      "queue_dropped_total",
			Help:      "Items dropped because a bounded queue was full.",
		},
		[]string{"owner", "queue"},
	)
	datagramsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seabridge",
			Name:      "datagrams_decoded_total",
			Help:      "Frames decoded into datagrams.",
		},
		[]string{"device", "command"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seabridge",
			Name:      "decode_errors_total",
			Help:      "Frames discarded by the read loop, by failure kind.",
		},
		[]string{"device", "kind"},
	)
	reconnects = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seabridge",
			Subsystem: "client",
			Name:      "reconnect_attempts_total",
			Help:      "Outbound connection attempts after a failure or close.",
		},
		[]string{"transport", "outcome"},
	)
	peersConnected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "seabridge",
			Subsystem: "server",
			Name:      "peers_connected",
			Help:      "Peers currently connected to a server transport.",
		},
		[]string{"transport"},
	)
	sentencesTranslated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "seabridge",
			Subsystem: "bridge",
			Name:      "sentences_total",
			Help:      "Sentences written by a bridge.",
		},
		[]string{"bridge", "type"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			queueDropped,
			datagramsDecoded,
			decodeErrors,
			reconnects,
			peersConnected,
			sentencesTranslated,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

func RecordQueueDrop(owner, queue string) {
	RegisterMetrics()
	queueDropped.WithLabelValues(owner, queue).Inc()
}

func RecordDatagram(device, command string) {
	RegisterMetrics()
	datagramsDecoded.WithLabelValues(device, command).Inc()
}

func RecordDecodeError(device, kind string) {
	RegisterMetrics()
	decodeErrors.WithLabelValues(device, kind).Inc()
}

func RecordReconnect(transport string, success bool) {
	RegisterMetrics()
	outcome := "failed"
	if success {
		outcome = "connected"
	}
	reconnects.WithLabelValues(transport, outcome).Inc()
}

func SetPeersConnected(transport string, n int) {
	RegisterMetrics()
	peersConnected.WithLabelValues(transport).Set(float64(n))
}

func RecordSentence(bridge, sentenceType string) {
	RegisterMetrics()
	sentencesTranslated.WithLabelValues(bridge, sentenceType).Inc()
}
