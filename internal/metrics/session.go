// Package metrics exposes Prometheus instrumentation for the switcher session.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ConnectAttempts counts connection attempts by outcome.
	ConnectAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switcherd_connect_attempts_total",
		Help: "Total number of switcher connection attempts by result",
	}, []string{"result"})

	// ConnectDuration tracks how long the handshake and input enumeration take.
	ConnectDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "switcherd_connect_duration_seconds",
		Help:    "Time from connect request to handshake completion",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	// Disconnects counts session teardowns by reason.
	Disconnects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switcherd_disconnects_total",
		Help: "Total number of session teardowns by reason",
	}, []string{"reason"})

	// DeviceWrites counts property pushes to the switcher.
	DeviceWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switcherd_device_writes_total",
		Help: "Total number of property writes issued to the switcher",
	}, []string{"property", "result"})

	// LookupMisses counts input names that did not resolve through the catalog.
	LookupMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "switcherd_input_lookup_misses_total",
		Help: "Input name or id lookups that found no catalog entry",
	}, []string{"direction"})

	// TickDuration tracks the liveness probe and refresh round trip.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "switcherd_tick_duration_seconds",
		Help:    "Duration of a connected session tick (probe + refresh)",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	})

	// Connected is 1 while a session is connected.
	Connected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "switcherd_connected",
		Help: "Whether the switcher session is connected (1) or not (0)",
	})

	// CatalogInputs is the number of inputs in the current catalog.
	CatalogInputs = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "switcherd_catalog_inputs",
		Help: "Number of inputs in the current input catalog",
	})
)

// ObserveConnect records the outcome and duration of a connection attempt.
func ObserveConnect(success bool, duration time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	ConnectAttempts.WithLabelValues(result).Inc()
	if success {
		ConnectDuration.Observe(duration.Seconds())
	}
}

// ObserveDisconnect records a teardown.
func ObserveDisconnect(reason string) {
	Disconnects.WithLabelValues(reason).Inc()
	Connected.Set(0)
	CatalogInputs.Set(0)
}

// ObserveConnected marks the session as connected with n catalog inputs.
func ObserveConnected(inputs int) {
	Connected.Set(1)
	CatalogInputs.Set(float64(inputs))
}

// ObserveDeviceWrite records a property push.
func ObserveDeviceWrite(property string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	DeviceWrites.WithLabelValues(property, result).Inc()
}

// ObserveLookupMiss records an unresolved name ("name") or id ("id") lookup.
func ObserveLookupMiss(direction string) {
	LookupMisses.WithLabelValues(direction).Inc()
}

// ObserveTick records a connected tick duration.
func ObserveTick(duration time.Duration) {
	TickDuration.Observe(duration.Seconds())
}
