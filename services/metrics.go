package services

import "github.com/prometheus/client_golang/prometheus"

var (
	registrationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_registrations_total",
			Help: "Registered users by role",
		},
		[]string{"role"},
	)

	ordersCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "food_orders_created_total",
		Help: "Orders created",
	})

	orderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_order_status_transitions_total",
			Help: "Order status changes by from/to status",
		},
		[]string{"from", "to"},
	)

	reviewsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "food_reviews_total",
		Help: "Reviews folded into restaurant ratings",
	})

	orphanedBlobs = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "food_orphaned_blobs_total",
		Help: "Image blobs that could not be released after a menu write",
	})

	// PartialWrites counts multi-system writes left inconsistent, incremented at the HTTP boundary
	PartialWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "food_partial_writes_total",
			Help: "Multi-step writes that failed after their first step",
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(registrationsTotal)
	prometheus.MustRegister(ordersCreated)
	prometheus.MustRegister(orderTransitions)
	prometheus.MustRegister(reviewsTotal)
	prometheus.MustRegister(orphanedBlobs)
	prometheus.MustRegister(PartialWrites)
}
