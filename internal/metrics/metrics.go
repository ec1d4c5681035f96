package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oneonone",
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests received",
	}, []string{"service", "method", "path", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "oneonone",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"service", "method", "path", "status"})

	httpInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "oneonone",
		Name:      "http_in_flight_requests",
		Help:      "Current number of in-flight HTTP requests",
	}, []string{"service"})

	wsConnections = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "oneonone",
		Name:      "ws_connections",
		Help:      "Current number of live collaboration sockets",
	}, []string{"role"})

	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "oneonone",
		Name:      "rooms_active",
		Help:      "Current number of live collaboration rooms",
	})

	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "oneonone",
		Name:      "frames_total",
		Help:      "Total number of inbound frames processed, by type",
	}, []string{"type"})

	noteFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "oneonone",
		Name:      "note_flushes_total",
		Help:      "Total number of notes flushes attempted",
	})

	noteFlushErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "oneonone",
		Name:      "note_flush_errors_total",
		Help:      "Total number of notes flushes that failed a sink write",
	})
)

func ConnectionOpened(role string) { wsConnections.WithLabelValues(role).Inc() }

func ConnectionClosed(role string) { wsConnections.WithLabelValues(role).Dec() }

func RoomOpened() { roomsActive.Inc() }

func RoomClosed() { roomsActive.Dec() }

func FrameProcessed(frameType string) { framesTotal.WithLabelValues(frameType).Inc() }

func FlushAttempted() { noteFlushes.Inc() }

func FlushFailed() { noteFlushErrors.Inc() }

type responseRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *responseRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if h, ok := r.ResponseWriter.(http.Hijacker); ok {
		return h.Hijack()
	}
	return nil, nil, fmt.Errorf("oneonone metrics: underlying ResponseWriter does not support hijacking")
}

// Middleware records request metrics with Prometheus labels.
func Middleware(service string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()

			httpInFlight.WithLabelValues(service).Inc()
			defer httpInFlight.WithLabelValues(service).Dec()

			next.ServeHTTP(rec, r)

			labels := prometheus.Labels{
				"service": service,
				"method":  r.Method,
				"path":    r.URL.Path,
				"status":  strconv.Itoa(rec.status),
			}

			httpRequests.With(labels).Inc()
			httpLatency.With(labels).Observe(time.Since(start).Seconds())
		})
	}
}

// Handler exposes the default Prometheus metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
