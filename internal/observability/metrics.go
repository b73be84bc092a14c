package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	exchangeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siremote",
			Subsystem: "exchange",
			Name:      "requests_total",
			Help:      "Total device exchanges issued by the client.",
		},
		[]string{"route", "status"},
	)
	exchangeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "siremote",
			Subsystem: "exchange",
			Name:      "duration_seconds",
			Help:      "Device exchange duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"route", "status"},
	)
	deviceRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siremote",
			Subsystem: "device",
			Name:      "requests_total",
			Help:      "Requests served by the device simulator.",
		},
		[]string{"method", "path", "status"},
	)
	deviceCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "siremote",
			Subsystem: "device",
			Name:      "commands_total",
			Help:      "Commands handled by the device simulator.",
		},
		[]string{"command", "response"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(exchangeRequests, exchangeDuration, deviceRequests, deviceCommands)
	})
}

// StatusLabel maps an HTTP status to its label. Zero means no response.
func StatusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

func RecordExchange(route string, status int, duration time.Duration) {
	RegisterMetrics()
	label := StatusLabel(status)
	exchangeRequests.WithLabelValues(route, label).Inc()
	exchangeDuration.WithLabelValues(route, label).Observe(duration.Seconds())
}

func RecordDeviceRequest(method, path string, status int) {
	RegisterMetrics()
	deviceRequests.WithLabelValues(method, path, StatusLabel(status)).Inc()
}

func RecordDeviceCommand(command, response string) {
	RegisterMetrics()
	deviceCommands.WithLabelValues(command, response).Inc()
}
