package api

import (
	"fmt"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/cockroachdb/errors"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

const (
	dateLayout          = "2006-01-02"
	datetimeLocalLayout = "2006-01-02T15:04"
)

type carResponse struct {
	ID                 int64    `json:"id"`
	Name               string   `json:"name"`
	PricePerDay        float64  `json:"pricePerDay"`
	Image              string   `json:"image"`
	Features           []string `json:"features"`
	Available          bool     `json:"available"`
	Type               string   `json:"type"`
	RegistrationNumber string   `json:"registrationNumber"`
}

type bookingResponse struct {
	ID                 int64   `json:"id"`
	CarID              int64   `json:"carId"`
	UserID             int64   `json:"userId"`
	CustomerEmail      string  `json:"customerEmail"`
	Pickup             string  `json:"pickupDatetime"`
	Dropoff            string  `json:"dropoffDatetime"`
	TotalPrice         float64 `json:"totalPrice"`
	Status             string  `json:"status"`
	PaymentStatus      string  `json:"paymentStatus"`
	DrivingLicensePath string  `json:"drivingLicensePath,omitempty"`
	CancelReason       string  `json:"cancelReason,omitempty"`
	CreatedAt          string  `json:"createdAt"`
}

type userResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type createCarRequest struct {
	Name               string   `json:"name"`
	PricePerDay        float64  `json:"pricePerDay"`
	Price              float64  `json:"price"`
	Image              string   `json:"image"`
	Features           []string `json:"features"`
	Type               string   `json:"type"`
	RegistrationNumber string   `json:"registrationNumber"`
}

// createBookingRequest accepts either an exact window (pickupDatetime and
// dropoffDatetime) or whole days (startDate and endDate, both inclusive).
// A client supplied totalPrice is accepted and ignored.
type createBookingRequest struct {
	CarID              int64    `json:"carId"`
	PickupDatetime     string   `json:"pickupDatetime"`
	DropoffDatetime    string   `json:"dropoffDatetime"`
	StartDate          string   `json:"startDate"`
	EndDate            string   `json:"endDate"`
	DrivingLicensePath string   `json:"drivingLicensePath"`
	TotalPrice         *float64 `json:"totalPrice,omitempty"`
}

type cancelBookingRequest struct {
	BookingID int64  `json:"bookingId"`
	Reason    string `json:"reason"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

var copyOptions = copier.Option{
	Converters: []copier.TypeConverter{
		{
			SrcType: decimal.Decimal{},
			DstType: float64(0),
			Fn: func(src any) (any, error) {
				return src.(decimal.Decimal).InexactFloat64(), nil
			},
		},
		{
			SrcType: time.Time{},
			DstType: copier.String,
			Fn: func(src any) (any, error) {
				t := src.(time.Time)
				if t.IsZero() {
					return "", nil
				}
				return t.UTC().Format(time.RFC3339), nil
			},
		},
		{
			SrcType: domain.BookingStatus(""),
			DstType: copier.String,
			Fn:      func(src any) (any, error) { return string(src.(domain.BookingStatus)), nil },
		},
		{
			SrcType: domain.PaymentStatus(""),
			DstType: copier.String,
			Fn:      func(src any) (any, error) { return string(src.(domain.PaymentStatus)), nil },
		},
		{
			SrcType: domain.Role(""),
			DstType: copier.String,
			Fn:      func(src any) (any, error) { return string(src.(domain.Role)), nil },
		},
	},
}

func toResponse[T any](src any) (T, error) {
	var dst T
	if err := copier.CopyWithOption(&dst, src, copyOptions); err != nil {
		return dst, errors.Wrap(err, "map response")
	}
	return dst, nil
}

// toResponses always returns a non-nil slice so empty lists encode as [].
func toResponses[T any](src any, n int) ([]T, error) {
	dst := make([]T, 0, n)
	if err := copier.CopyWithOption(&dst, src, copyOptions); err != nil {
		return nil, errors.Wrap(err, "map response")
	}
	return dst, nil
}

func (r createCarRequest) toDomain() *domain.Car {
	price := r.PricePerDay
	if price == 0 {
		price = r.Price
	}
	return &domain.Car{
		Name:               r.Name,
		PricePerDay:        decimal.NewFromFloat(price),
		Image:              r.Image,
		Features:           r.Features,
		Type:               r.Type,
		RegistrationNumber: r.RegistrationNumber,
	}
}

// window resolves the rental window from whichever pair of fields was sent.
func (r createBookingRequest) window() (pickup, dropoff time.Time, err error) {
	if r.PickupDatetime != "" || r.DropoffDatetime != "" {
		if pickup, err = parseDatetime(r.PickupDatetime); err != nil {
			return time.Time{}, time.Time{}, err
		}
		if dropoff, err = parseDatetime(r.DropoffDatetime); err != nil {
			return time.Time{}, time.Time{}, err
		}
		return pickup, dropoff, nil
	}

	start, err := time.Parse(dateLayout, r.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidInputCause(err, "startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, r.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, domain.InvalidInputCause(err, "endDate must be YYYY-MM-DD")
	}
	return start, end.AddDate(0, 0, 1), nil
}

func parseDatetime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(datetimeLocalLayout, value)
	if err != nil {
		return time.Time{}, domain.InvalidInputCause(err, fmt.Sprintf("datetime %q must be RFC 3339 or YYYY-MM-DDTHH:MM", value))
	}
	return t, nil
}
