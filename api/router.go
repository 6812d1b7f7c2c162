package api

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/metrics"
	"github.com/Domenick1991/carrental/internal/service/auth"
	"github.com/Domenick1991/carrental/internal/service/booking"
	"github.com/Domenick1991/carrental/internal/service/cars"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const swaggerSpecFile = "carrental.swagger.json"

type RouterDeps struct {
	Cars        cars.CarUseCase
	Bookings    booking.BookingUseCase
	Auth        auth.AuthUseCase
	Tokens      TokenValidator
	Idempotency IdempotencyStore
	Logger      *slog.Logger
}

func NewRouter(cfg *config.Config, deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(deps.Logger), NewCORSMiddleware(cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		respond(c, http.StatusOK, "ok", gin.H{"time": time.Now().UTC().Format(time.RFC3339)})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	authMW := NewAuthMiddleware(deps.Tokens, cfg.Auth.CookieName)
	carHandler := NewCarHandler(deps.Cars)
	bookingHandler := NewBookingHandler(deps.Bookings)
	authHandler := NewAuthHandler(deps.Auth, CookieConfig{
		Name:   cfg.Auth.CookieName,
		Secure: cfg.Auth.CookieSecure,
		TTL:    cfg.Auth.TokenTTL(),
	})

	apiGroup := router.Group("/api")
	authHandler.Register(apiGroup.Group("/auth"))
	authHandler.RegisterMe(apiGroup.Group("/auth", authMW.RequireAuth()))

	carHandler.Register(apiGroup.Group("/cars"))
	carHandler.RegisterAdmin(apiGroup.Group("/cars", authMW.RequireAuth(), authMW.RequireAdmin()))
	carHandler.RegisterAdmin(apiGroup.Group("/admin/cars", authMW.RequireAuth(), authMW.RequireAdmin()))

	var idempotency []gin.HandlerFunc
	if deps.Idempotency != nil {
		idempotency = append(idempotency, Idempotency(deps.Idempotency, cfg.Booking.IdempotencyTTL()))
	}
	bookingHandler.Register(apiGroup.Group("/bookings", authMW.RequireAuth()), idempotency...)
	bookingHandler.RegisterAdmin(apiGroup.Group("/admin/bookings", authMW.RequireAuth(), authMW.RequireAdmin()))

	if cfg.HTTP.SwaggerDir != "" {
		router.Static("/swagger", cfg.HTTP.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/"+swaggerSpecFile))))
	}

	router.NoRoute(staticFallback(cfg.HTTP.WebDir))
	return router
}

// staticFallback serves the web client for every non-API path.
func staticFallback(webDir string) gin.HandlerFunc {
	var files http.Handler
	if webDir != "" {
		files = http.FileServer(http.Dir(webDir))
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if files == nil || strings.HasPrefix(path, "/api/") || c.Request.Method != http.MethodGet {
			fail(c, http.StatusNotFound, "Not found")
			return
		}
		if _, err := os.Stat(filepath.Join(webDir, filepath.FromSlash(filepath.Clean(path)))); err != nil {
			fail(c, http.StatusNotFound, "Not found")
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
