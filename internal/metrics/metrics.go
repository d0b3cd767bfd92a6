package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/officehours/officehours/internal/event_bus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	updates  *prometheus.CounterVec
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. If reg is nil, the default registry is used.
// Collectors that are already registered are reused.
func New(reg *prometheus.Registry) (*Metrics, error) {
	var registerer prometheus.Registerer = reg
	var gatherer prometheus.Gatherer = reg
	if reg == nil {
		registerer = prometheus.DefaultRegisterer
		gatherer = prometheus.DefaultGatherer
	}

	updates := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "officehours_schedule_updates_total",
		Help: "Total number of schedule changes",
	}, []string{"action"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "officehours_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "officehours_http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	var err error
	if updates, err = register(registerer, updates); err != nil {
		return nil, err
	}
	if requests, err = register(registerer, requests); err != nil {
		return nil, err
	}
	if latency, err = register(registerer, latency); err != nil {
		return nil, err
	}
	return &Metrics{updates: updates, requests: requests, latency: latency, gatherer: gatherer}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Subscribe counts every schedule update published on bus.
func (m *Metrics) Subscribe(bus *event_bus.EventBus) (unsubscribe func()) {
	return event_bus.SubscribeTyped[event_bus.ScheduleUpdated](bus, event_bus.ScheduleUpdatedEvent,
		func(e event_bus.EventT[event_bus.ScheduleUpdated]) error {
			m.updates.WithLabelValues(e.Data.Action).Inc()
			return nil
		})
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
