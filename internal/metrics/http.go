package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts API requests by method and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switcherd_http_requests_total",
		Help: "Total number of HTTP API requests",
	}, []string{"method", "code"})

	// HTTPDuration tracks API request latency by method.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "switcherd_http_request_duration_seconds",
		Help:    "HTTP API request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// OSCMessages counts OSC messages by address and result.
	OSCMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switcherd_osc_messages_total",
		Help: "Total number of OSC control messages handled",
	}, []string{"address", "result"})

	// WSClients is the number of connected websocket clients.
	WSClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "switcherd_ws_clients",
		Help: "Number of connected websocket event clients",
	})
)

// ObserveHTTP records a completed API request.
func ObserveHTTP(method string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveOSC records a handled OSC message.
func ObserveOSC(address string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	OSCMessages.WithLabelValues(address, result).Inc()
}
