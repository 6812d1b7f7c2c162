package api

import (
	"net/http"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the renter routes; router must already require authentication.
// create is passed separately so callers can wrap it with idempotency handling.
func (h *BookingHandler) Register(router *gin.RouterGroup, createMiddleware ...gin.HandlerFunc) {
	router.POST("", append(createMiddleware, h.create)...)
	router.GET("", h.listMine)
	router.POST("/cancel", h.cancelByBody)
	router.GET("/:id", h.get)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/payment-request", h.requestPayment)
}

// RegisterAdmin mounts the admin routes; router must already require an admin.
func (h *BookingHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.GET("", h.listAll)
	router.POST("/:id/mark-paid", h.markPaid)
	router.DELETE("/:id", h.remove)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CarID <= 0 {
		fail(c, http.StatusBadRequest, "carId is required")
		return
	}
	pickup, dropoff, err := req.window()
	if err != nil {
		failErr(c, err)
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		CarID:              req.CarID,
		UserID:             currentUserID(c),
		Email:              currentEmail(c),
		Pickup:             pickup,
		Dropoff:            dropoff,
		DrivingLicensePath: req.DrivingLicensePath,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBooking(c, http.StatusCreated, "Booking created, awaiting payment", b)
}

func (h *BookingHandler) listMine(c *gin.Context) {
	list, err := h.service.ListUserBookings(c.Request.Context(), currentUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBookings(c, list)
}

func (h *BookingHandler) listAll(c *gin.Context) {
	list, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBookings(c, list)
}

func (h *BookingHandler) get(c *gin.Context) {
	b, ok := h.owned(c)
	if !ok {
		return
	}
	h.writeBooking(c, http.StatusOK, "Booking retrieved", b)
}

func (h *BookingHandler) cancelByBody(c *gin.Context) {
	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.BookingID <= 0 {
		fail(c, http.StatusBadRequest, "bookingId is required")
		return
	}
	h.doCancel(c, req.BookingID, req.Reason)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req cancelBookingRequest
	_ = c.ShouldBindJSON(&req)
	h.doCancel(c, id, req.Reason)
}

func (h *BookingHandler) doCancel(c *gin.Context, id int64, reason string) {
	if _, ok := h.ownedID(c, id); !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id, reason)
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBooking(c, http.StatusOK, "Booking cancelled", b)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	current, ok := h.owned(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), current.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBooking(c, http.StatusOK, "Payment successful, booking confirmed", b)
}

func (h *BookingHandler) requestPayment(c *gin.Context) {
	current, ok := h.owned(c)
	if !ok {
		return
	}
	b, err := h.service.RequestPayment(c.Request.Context(), current.ID)
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBooking(c, http.StatusOK, "Payment requested", b)
}

func (h *BookingHandler) markPaid(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, err := h.service.MarkPaid(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}
	h.writeBooking(c, http.StatusOK, "Booking marked as paid", b)
}

func (h *BookingHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteBooking(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Booking deleted", nil)
}

func (h *BookingHandler) owned(c *gin.Context) (*domain.Booking, bool) {
	id, ok := pathID(c)
	if !ok {
		return nil, false
	}
	return h.ownedID(c, id)
}

// ownedID loads the booking and checks that the caller owns it or is an admin.
func (h *BookingHandler) ownedID(c *gin.Context, id int64) (*domain.Booking, bool) {
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return nil, false
	}
	if b.UserID != currentUserID(c) && !isAdmin(c) {
		failErr(c, domain.ErrForbidden)
		return nil, false
	}
	return b, true
}

func (h *BookingHandler) writeBooking(c *gin.Context, status int, message string, b *domain.Booking) {
	out, err := toResponse[bookingResponse](b)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, status, message, gin.H{"booking": out})
}

func (h *BookingHandler) writeBookings(c *gin.Context, list []domain.Booking) {
	out, err := toResponses[bookingResponse](list, len(list))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Bookings retrieved", gin.H{"bookings": out})
}
