package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns a private registry so tests can build collectors side by
// side without duplicate registration panics.
type Collector struct {
	reg *prometheus.Registry

	TimetableTrips prometheus.Gauge
	NATSConnected  prometheus.Gauge

	TriggersHandled *prometheus.CounterVec // kind label: created|updated|deleted
	TriggersFailed  *prometheus.CounterVec

	RoutingCalls     prometheus.Counter
	RoutingErrors    prometheus.Counter
	ItinerariesBuilt prometheus.Counter

	HandleDuration prometheus.Histogram
	SampleDuration prometheus.Histogram
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		TimetableTrips: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railmatch_timetable_trips",
			Help: "Number of scheduled trips in the loaded timetable.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "railmatch_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		TriggersHandled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railmatch_triggers_handled_total",
			Help: "Total event triggers handled successfully.",
		}, []string{"kind"}),
		TriggersFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "railmatch_triggers_failed_total",
			Help: "Total event triggers that failed.",
		}, []string{"kind"}),
		RoutingCalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmatch_routing_calls_total",
			Help: "Total routing service calls issued by window sampling.",
		}),
		RoutingErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmatch_routing_errors_total",
			Help: "Total failed sampling intervals.",
		}),
		ItinerariesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "railmatch_itineraries_built_total",
			Help: "Total itineraries surviving reconciliation and filtering.",
		}),
		HandleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railmatch_trigger_duration_seconds",
			Help:    "Duration of one pipeline run per trigger.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 15),
		}),
		SampleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "railmatch_sample_duration_seconds",
			Help:    "Duration of one full window sampling run.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 15),
		}),
	}

	reg.MustRegister(
		c.TimetableTrips, c.NATSConnected,
		c.TriggersHandled, c.TriggersFailed,
		c.RoutingCalls, c.RoutingErrors, c.ItinerariesBuilt,
		c.HandleDuration, c.SampleDuration,
	)
	return c
}

// The next four methods satisfy event.SubscriberMetrics.

func (c *Collector) TriggerHandled(kind string) { c.TriggersHandled.WithLabelValues(kind).Inc() }
func (c *Collector) TriggerFailed(kind string)  { c.TriggersFailed.WithLabelValues(kind).Inc() }
func (c *Collector) HandleObserve(d time.Duration) {
	c.HandleDuration.Observe(d.Seconds())
}
func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve exposes /metrics on its own listener.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
