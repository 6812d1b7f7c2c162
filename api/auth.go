package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/carrental/internal/service/auth"
	"github.com/gin-gonic/gin"
)

type CookieConfig struct {
	Name   string
	Secure bool
	TTL    time.Duration
}

type AuthHandler struct {
	service auth.AuthUseCase
	cookie  CookieConfig
}

func NewAuthHandler(service auth.AuthUseCase, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{service: service, cookie: cookie}
}

func (h *AuthHandler) Register(router *gin.RouterGroup) {
	router.POST("/register", h.register)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
}

// RegisterMe mounts the current-user route; router must already require authentication.
func (h *AuthHandler) RegisterMe(router *gin.RouterGroup) {
	router.GET("/me", h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(c.Request.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := toResponse[userResponse](user)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusCreated, "Registration successful", gin.H{"user": out})
}

func (h *AuthHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failErr(c, err)
		return
	}

	out, err := toResponse[userResponse](result.User)
	if err != nil {
		failErr(c, err)
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, result.Token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	respond(c, http.StatusOK, "Login successful", gin.H{"user": out, "token": result.Token})
}

func (h *AuthHandler) logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	respond(c, http.StatusOK, "Logged out", nil)
}

func (h *AuthHandler) me(c *gin.Context) {
	user, err := h.service.GetUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		failErr(c, err)
		return
	}
	out, err := toResponse[userResponse](user)
	if err != nil {
		failErr(c, err)
		return
	}
	respond(c, http.StatusOK, "Current user", gin.H{"user": out})
}
