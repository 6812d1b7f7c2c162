package domain

import "github.com/cockroachdb/errors"

var (
	ErrInvalidWindow   = errors.New("pickup must be strictly before dropoff")
	ErrCarUnavailable  = errors.New("car is not available")
	ErrAlreadyTerminal = errors.New("booking is already in a terminal state")
	ErrPaymentFailed   = errors.New("payment was declined")
	ErrInvalidInput    = errors.New("invalid input")

	// ErrNotFound is matched by every not-found sentinel below.
	ErrNotFound        = errors.New("resource not found")
	ErrCarNotFound     = errors.Mark(errors.New("car not found"), ErrNotFound)
	ErrBookingNotFound = errors.Mark(errors.New("booking not found"), ErrNotFound)
	ErrUserNotFound    = errors.Mark(errors.New("user not found"), ErrNotFound)

	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("forbidden")

	// ErrStore marks persistence failures. They are surfaced as-is and never retried.
	ErrStore = errors.New("store failure")
)

// IsNotFound reports whether err says that a car, booking or user does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// InvalidInput is ErrInvalidInput carrying a reason that can be shown to the client.
func InvalidInput(reason string) error {
	return errors.WithHint(ErrInvalidInput, reason)
}

// InvalidInputCause keeps cause for logs and shows only reason to the client.
func InvalidInputCause(cause error, reason string) error {
	return errors.WithHint(errors.Mark(errors.Wrap(cause, reason), ErrInvalidInput), reason)
}

// StoreError wraps a persistence failure so that errors.Is(err, ErrStore) holds.
func StoreError(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Mark(errors.Wrap(err, op), ErrStore)
}

// ErrPaymentState is returned when the payment axis cannot move to the requested state.
var ErrPaymentState = errors.New("payment status does not allow this change")
