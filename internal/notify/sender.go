package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/carrental/internal/kafka"
	"github.com/Domenick1991/carrental/internal/metrics"
)

// Sender delivers booking notifications. Delivery is a structured log line;
// there is no mail transport.
type Sender struct {
	logger *slog.Logger
}

func NewSender(logger *slog.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		s.logger.DebugContext(ctx, "notification without recipient dropped",
			slog.String("type", event.Type), slog.Int64("booking_id", event.BookingID))
		return nil
	}

	s.logger.InfoContext(ctx, "notification sent",
		slog.String("to", event.Email),
		slog.String("subject", Subject(event)),
		slog.Int64("booking_id", event.BookingID),
		slog.Int64("car_id", event.CarID))
	metrics.NotificationsSent.WithLabelValues(event.Type).Inc()
	return nil
}

func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking #%d received, total %s", event.BookingID, event.TotalPrice.StringFixed(2))
	case kafka.EventBookingConfirmed:
		return fmt.Sprintf("Booking #%d confirmed", event.BookingID)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking #%d cancelled", event.BookingID)
	case kafka.EventBookingExpired:
		return fmt.Sprintf("Booking #%d expired before payment", event.BookingID)
	case kafka.EventBookingPaymentRequested:
		return fmt.Sprintf("Payment requested for booking #%d", event.BookingID)
	case kafka.EventBookingPaid:
		return fmt.Sprintf("Payment received for booking #%d", event.BookingID)
	default:
		return fmt.Sprintf("Booking #%d updated", event.BookingID)
	}
}
