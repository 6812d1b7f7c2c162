package api

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/carrental/config"
	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/Domenick1991/carrental/internal/metrics"
	"github.com/Domenick1991/carrental/internal/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxRequestIDKey = "request_id"
	ctxUserIDKey    = "user_id"
	ctxUserRoleKey  = "user_role"
	ctxUserEmailKey = "user_email"

	idempotencyHeader = "Idempotency-Key"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

// IdempotencyStore remembers responses of requests that carried an Idempotency-Key.
type IdempotencyStore interface {
	ReserveKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	CompleteKey(ctx context.Context, key string, response []byte, ttl time.Duration) error
	ReleaseKey(ctx context.Context, key string) error
	StoredResponse(ctx context.Context, key string) ([]byte, bool, error)
}

func NewCORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           time.Duration(cfg.MaxAgeHours) * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"*"}
		corsCfg.AllowCredentials = false
	}
	return cors.New(corsCfg)
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(ctxRequestIDKey, requestID)
		c.Header("X-Request-ID", requestID)

		c.Next()

		status := c.Writer.Status()
		attrs := []slog.Attr{
			slog.String("request_id", requestID),
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if userID, ok := c.Get(ctxUserIDKey); ok {
			attrs = append(attrs, slog.Any("user_id", userID))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		} else if status >= http.StatusBadRequest {
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request completed", attrs...)

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
	}
}

type AuthMiddleware struct {
	tokens     TokenValidator
	cookieName string
}

func NewAuthMiddleware(tokens TokenValidator, cookieName string) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, cookieName: cookieName}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(m.cookieName)
		if token == "" {
			if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			}
		}
		if token == "" {
			fail(c, http.StatusUnauthorized, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := m.tokens.ValidateToken(token)
		if err != nil {
			fail(c, http.StatusUnauthorized, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, claims.UserID)
		c.Set(ctxUserRoleKey, domain.Role(claims.Role))
		c.Set(ctxUserEmailKey, claims.Email)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isAdmin(c) {
			fail(c, http.StatusForbidden, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserIDKey)
}

func currentEmail(c *gin.Context) string {
	return c.GetString(ctxUserEmailKey)
}

func isAdmin(c *gin.Context) bool {
	role, _ := c.Get(ctxUserRoleKey)
	r, ok := role.(domain.Role)
	return ok && r == domain.RoleAdmin
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key. Only successful responses are stored; a failed request
// frees its key so the client can retry. Keys are scoped per user.
func Idempotency(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if store == nil || key == "" {
			c.Next()
			return
		}
		key = strconv.FormatInt(currentUserID(c), 10) + ":" + key
		ctx := c.Request.Context()

		reserved, err := store.ReserveKey(ctx, key, ttl)
		if err != nil {
			slog.WarnContext(ctx, "idempotency store unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		}
		if !reserved {
			stored, done, err := store.StoredResponse(ctx, key)
			if err == nil && done {
				c.Header("X-Idempotency-Hit", "true")
				c.Data(http.StatusOK, "application/json; charset=utf-8", stored)
				c.Abort()
				return
			}
			fail(c, http.StatusConflict, "A request with this Idempotency-Key is already in progress")
			c.Abort()
			return
		}

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		if rec.Status() < http.StatusBadRequest {
			if err := store.CompleteKey(ctx, key, rec.body.Bytes(), ttl); err != nil {
				slog.WarnContext(ctx, "failed to store idempotent response", slog.String("error", err.Error()))
			}
			return
		}
		if err := store.ReleaseKey(ctx, key); err != nil {
			slog.WarnContext(ctx, "failed to release idempotency key", slog.String("error", err.Error()))
		}
	}
}
