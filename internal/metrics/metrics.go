package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vitasyn"

var (
	once sync.Once

	availabilitySaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_saves_total",
			Help:      "Count of availability save attempts by result.",
		},
		[]string{"result"},
	)

	blockMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_mutations_total",
			Help:      "Count of manual block creations and deletions by result.",
		},
		[]string{"action", "result"},
	)

	rollbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimistic_rollbacks_total",
			Help:      "Count of optimistic calendar mutations undone after a failed write.",
		},
		[]string{"action"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_total",
			Help:      "Count of patient booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_cache_lookups_total",
			Help:      "Count of availability cache lookups by result.",
		},
		[]string{"result"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Count of API requests by route.",
		},
		[]string{"route"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilitySaves, blockMutations, rollbacks, bookings, cacheLookups, httpRequests)
	})
}

func IncAvailabilitySave(result string) {
	availabilitySaves.WithLabelValues(result).Inc()
}

func IncBlockMutation(action, result string) {
	blockMutations.WithLabelValues(action, result).Inc()
}

func IncRollback(action string) {
	rollbacks.WithLabelValues(action).Inc()
}

func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

func IncCacheLookup(result string) {
	cacheLookups.WithLabelValues(result).Inc()
}

func IncHTTP(route string) {
	httpRequests.WithLabelValues(route).Inc()
}
