package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Business metrics
	SubscriptionOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evbs_subscription_operations_total",
		Help: "Subscription lifecycle operations by type and outcome",
	}, []string{"operation", "status"})

	SwapDeductionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evbs_swap_deductions_total",
		Help: "Swaps deducted from subscriptions",
	})

	PaymentCallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evbs_payment_callbacks_total",
		Help: "Payment provider callbacks by outcome",
	}, []string{"status"})

	// Reconciler metrics
	ReconcilerRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evbs_reconciler_runs_total",
		Help: "Completed reservation-expiry reconciler runs",
	})

	ReconcilerBatteriesScanned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evbs_reconciler_batteries_scanned_total",
		Help: "Expired PENDING batteries examined by the reconciler",
	})

	ReconcilerBookingsCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evbs_reconciler_bookings_cancelled_total",
		Help: "Bookings auto-cancelled as no-shows",
	})
)
