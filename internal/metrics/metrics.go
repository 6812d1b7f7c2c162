package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BookingsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrental_bookings_created_total",
		Help: "Bookings created in PENDING state",
	})
	BookingsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrental_bookings_confirmed_total",
		Help: "Bookings confirmed after a successful payment",
	})
	BookingsCancelled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_bookings_cancelled_total",
		Help: "Bookings cancelled, by cause",
	}, []string{"cause"})
	PaymentAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_payment_attempts_total",
		Help: "Payment processor calls, by outcome",
	}, []string{"outcome"})
	ExpirySweeps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrental_expiry_sweeps_total",
		Help: "Expiry monitor ticks",
	})
	ExpirySweepErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carrental_expiry_sweep_errors_total",
		Help: "Pending bookings the expiry monitor failed to cancel",
	})
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_http_requests_total",
		Help: "HTTP requests, by method, route and status",
	}, []string{"method", "route", "status"})
	NotificationsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carrental_notifications_sent_total",
		Help: "Notifications sent by the worker, by event type",
	}, []string{"type"})
)

const (
	CauseUser    = "user"
	CauseExpired = "expired"

	OutcomeApproved = "approved"
	OutcomeDeclined = "declined"
	OutcomeError    = "error"
)

func Handler() http.Handler {
	return promhttp.Handler()
}
