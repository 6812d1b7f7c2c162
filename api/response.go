package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/pkg/errs"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
)

// respond writes the {success, message} envelope plus any payload fields.
func respond(c *gin.Context, status int, message string, payload gin.H) {
	body := gin.H{"success": status < http.StatusBadRequest, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

func failErr(c *gin.Context, err error) {
	status, message := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed",
			slog.String("path", c.Request.URL.Path),
			slog.String("error", err.Error()),
			slog.Any("stack", errs.ExtractStackLines(err, 10)))
	}
	_ = c.Error(err)
	fail(c, status, message)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidWindow):
		return http.StatusBadRequest, "Pickup must be before dropoff"
	case errors.Is(err, domain.ErrInvalidInput):
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			return http.StatusBadRequest, "Invalid input: " + strings.Join(hints, "; ")
		}
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Access denied"
	case errors.Is(err, domain.ErrCarNotFound):
		return http.StatusNotFound, "Car not found"
	case errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound, "Booking not found"
	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, domain.ErrCarUnavailable):
		return http.StatusConflict, "Car is not available"
	case errors.Is(err, domain.ErrAlreadyTerminal):
		return http.StatusConflict, "Booking is already confirmed or cancelled"
	case errors.Is(err, domain.ErrPaymentState):
		return http.StatusConflict, "Payment status does not allow this change"
	case errors.Is(err, domain.ErrEmailTaken):
		return http.StatusConflict, "Email already exists"
	case errors.Is(err, domain.ErrPaymentFailed):
		return http.StatusPaymentRequired, "Payment failed, booking is still pending"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}
