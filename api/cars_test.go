package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type carsEnvelope struct {
	Success bool          `json:"success"`
	Cars    []carResponse `json:"cars"`
	Car     *carResponse  `json:"car"`
}

func newCarRouter(service *MockCarUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewCarHandler(service)
	handler.Register(router.Group("/cars"))
	handler.RegisterAdmin(router.Group("/cars"))
	return router
}

func sampleCars() []domain.Car {
	return []domain.Car{
		{ID: 1, Name: "Toyota Camry", PricePerDay: decimal.NewFromInt(5000), Available: true, Type: "Sedan", Features: []string{"Automatic"}},
		{ID: 2, Name: "Ford Mustang", PricePerDay: decimal.RequireFromString("80.5"), Available: false, Type: "Coupe"},
	}
}

func TestCarHandler_list(t *testing.T) {
	mockService := &MockCarUseCase{}
	mockService.On("List", mock.Anything).Return(sampleCars(), nil)
	router := newCarRouter(mockService)

	w := doJSON(t, router, http.MethodGet, "/cars", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body carsEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Cars, 2)
	assert.Equal(t, "Toyota Camry", body.Cars[0].Name)
	assert.Equal(t, 5000.0, body.Cars[0].PricePerDay)
	assert.Equal(t, []string{"Automatic"}, body.Cars[0].Features)
	assert.Equal(t, 80.5, body.Cars[1].PricePerDay)
	assert.False(t, body.Cars[1].Available)
	mockService.AssertNotCalled(t, "ListAvailable", mock.Anything)
}

func TestCarHandler_listAvailable(t *testing.T) {
	mockService := &MockCarUseCase{}
	mockService.On("ListAvailable", mock.Anything).Return(sampleCars()[:1], nil)
	router := newCarRouter(mockService)

	w := doJSON(t, router, http.MethodGet, "/cars?available=true", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var body carsEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Cars, 1)
	mockService.AssertNotCalled(t, "List", mock.Anything)
}

func TestCarHandler_get(t *testing.T) {
	mockService := &MockCarUseCase{}
	car := sampleCars()[0]
	mockService.On("GetByID", mock.Anything, int64(1)).Return(&car, nil)
	mockService.On("GetByID", mock.Anything, int64(9)).Return(nil, domain.ErrCarNotFound)
	router := newCarRouter(mockService)

	w := doJSON(t, router, http.MethodGet, "/cars/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body carsEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Car)
	assert.Equal(t, int64(1), body.Car.ID)

	w = doJSON(t, router, http.MethodGet, "/cars/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodGet, "/cars/0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarHandler_create(t *testing.T) {
	mockService := &MockCarUseCase{}
	mockService.On("AddCar", mock.Anything, mock.MatchedBy(func(c *domain.Car) bool {
		return c.Name == "Honda Civic" && c.PricePerDay.Equal(decimal.NewFromInt(4500))
	})).Return(&domain.Car{ID: 3, Name: "Honda Civic", PricePerDay: decimal.NewFromInt(4500), Available: true, Type: "Sedan"}, nil)
	router := newCarRouter(mockService)

	w := doJSON(t, router, http.MethodPost, "/cars", gin.H{"name": "Honda Civic", "price": 4500})

	require.Equal(t, http.StatusCreated, w.Code)
	var body carsEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Car.Available)
	mockService.AssertExpectations(t)
}

func TestCarHandler_createInvalid(t *testing.T) {
	mockService := &MockCarUseCase{}
	mockService.On("AddCar", mock.Anything, mock.Anything).Return(nil, domain.ErrInvalidInput)
	router := newCarRouter(mockService)

	w := doJSON(t, router, http.MethodPost, "/cars", gin.H{"price": -1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCarHandler_remove(t *testing.T) {
	mockService := &MockCarUseCase{}
	mockService.On("RemoveCar", mock.Anything, int64(1)).Return(nil)
	mockService.On("RemoveCar", mock.Anything, int64(2)).Return(domain.ErrCarUnavailable)
	router := newCarRouter(mockService)

	assert.Equal(t, http.StatusOK, doJSON(t, router, http.MethodDelete, "/cars/1", nil).Code)
	assert.Equal(t, http.StatusConflict, doJSON(t, router, http.MethodDelete, "/cars/2", nil).Code)
}
