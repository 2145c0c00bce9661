package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gifters_orders_created_total",
		Help: "Orders accepted by the anti-abuse gate and created.",
	})

	ordersRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gifters_orders_rejected_total",
		Help: "Order submissions rejected at creation time.",
	}, []string{"reason"})

	sweepTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gifters_cooldown_transitions_total",
		Help: "Orders moved FOLLOWED -> READY_FOR_GIFTING by the sweeper.",
	})
)
