// Package metrics exposes the Prometheus collectors of the API
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatta",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gatta",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	seatMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatta",
		Name:      "seat_mutations_total",
		Help:      "Seat mutations by intent and outcome.",
	}, []string{"intent", "outcome"})

	realtimeSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gatta",
		Name:      "realtime_subscribers",
		Help:      "Open realtime websocket subscriptions.",
	})

	droppedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gatta",
		Name:      "realtime_dropped_events_total",
		Help:      "Seat events dropped for slow subscribers.",
	})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gatta",
		Name:      "pot_cache_lookups_total",
		Help:      "Pot cache lookups by result.",
	}, []string{"result"})
)

// ObserveRequest records one finished HTTP request
func ObserveRequest(route, method string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// SeatMutation counts a mutation outcome, e.g. ("confirm", "applied")
func SeatMutation(intent, outcome string) {
	seatMutations.WithLabelValues(intent, outcome).Inc()
}

func SubscriberAdded()   { realtimeSubscribers.Inc() }
func SubscriberRemoved() { realtimeSubscribers.Dec() }
func EventDropped()      { droppedEvents.Inc() }

func CacheHit()  { cacheLookups.WithLabelValues("hit").Inc() }
func CacheMiss() { cacheLookups.WithLabelValues("miss").Inc() }
