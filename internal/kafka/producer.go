package kafka

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const (
	EventBookingCreated          = "booking_created"
	EventBookingConfirmed        = "booking_confirmed"
	EventBookingCancelled        = "booking_cancelled"
	EventBookingExpired          = "booking_expired"
	EventBookingPaymentRequested = "booking_payment_requested"
	EventBookingPaid             = "booking_paid"
	EventBookingDeleted          = "booking_deleted"
)

type BookingEvent struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	BookingID     int64           `json:"booking_id"`
	CarID         int64           `json:"car_id"`
	UserID        int64           `json:"user_id"`
	Email         string          `json:"email"`
	Status        string          `json:"status"`
	PaymentStatus string          `json:"payment_status"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	Pickup        time.Time       `json:"pickup"`
	Dropoff       time.Time       `json:"dropoff"`
	Reason        string          `json:"reason,omitempty"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

func NewBookingEvent(eventType string, b *domain.Booking, at time.Time) BookingEvent {
	return BookingEvent{
		ID:            uuid.NewString(),
		Type:          eventType,
		BookingID:     b.ID,
		CarID:         b.CarID,
		UserID:        b.UserID,
		Email:         b.CustomerEmail,
		Status:        string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		TotalPrice:    b.TotalPrice,
		Pickup:        b.Pickup,
		Dropoff:       b.Dropoff,
		Reason:        b.CancelReason,
		OccurredAt:    at,
	}
}

type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewProducer(brokers []string, logger *slog.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return &Producer{writer: writer, logger: logger}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal payload")
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return errors.Wrapf(err, "write message to %s", topic)
	}

	p.logger.Debug("published event", slog.String("topic", topic), slog.String("key", key))
	return nil
}

func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
