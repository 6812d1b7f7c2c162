package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/service/cars"
	"github.com/gin-gonic/gin"
)

type CarHandler struct {
	service cars.CarUseCase
}

func NewCarHandler(service cars.CarUseCase) *CarHandler {
	return &CarHandler{service: service}
}

// Register mounts the public catalog routes.
func (h *CarHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

// RegisterAdmin mounts catalog management; router must already require an admin.
func (h *CarHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.DELETE("/:id", h.remove)
}

func (h *CarHandler) list(c *gin.Context) {
	var (
		list []domain.Car
		err  error
	)
	if available, _ := strconv.ParseBool(c.Query("available")); available {
		list, err = h.service.ListAvailable(c.Request.Context())
	} else {
		list, err = h.service.List(c.Request.Context())
	}
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := toResponses[carResponse](list, len(list))
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Cars retrieved", gin.H{"cars": out})
}

func (h *CarHandler) get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	car, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := toResponse[carResponse](car)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Car retrieved", gin.H{"car": out})
}

func (h *CarHandler) create(c *gin.Context) {
	var req createCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	car, err := h.service.AddCar(c.Request.Context(), req.toDomain())
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := toResponse[carResponse](car)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Car added successfully", gin.H{"car": out})
}

func (h *CarHandler) remove(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.RemoveCar(c.Request.Context(), id); err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Car deleted", nil)
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}
