package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {},
	BookingStatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// PaymentStatus is tracked independently of BookingStatus.
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "UNPAID"
	PaymentStatusRequested PaymentStatus = "PAYMENT_REQUESTED"
	PaymentStatusPaid      PaymentStatus = "PAID"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusUnpaid:    {PaymentStatusRequested, PaymentStatusPaid},
	PaymentStatusRequested: {PaymentStatusPaid},
	PaymentStatusPaid:      {},
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, t := range paymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// PaymentSources lists the payment states from which target can be reached.
func PaymentSources(target PaymentStatus) []PaymentStatus {
	var from []PaymentStatus
	for src, targets := range paymentTransitions {
		for _, t := range targets {
			if t == target {
				from = append(from, src)
			}
		}
	}
	return from
}

type Booking struct {
	ID                 int64
	CarID              int64
	UserID             int64
	CustomerEmail      string
	Pickup             time.Time
	Dropoff            time.Time
	TotalPrice         decimal.Decimal
	Status             BookingStatus
	PaymentStatus      PaymentStatus
	DrivingLicensePath string
	CancelReason       string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ExpiredAt reports whether a pending booking has been waiting longer than threshold at now.
func (b *Booking) ExpiredAt(now time.Time, threshold time.Duration) bool {
	return b.Status == BookingStatusPending && now.Sub(b.CreatedAt) > threshold
}
