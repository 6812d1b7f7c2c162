package jwt

import (
	"testing"
	"time"

	"github.com/Domenick1991/carrental/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := NewService("test-secret", time.Hour)
	user := &domain.User{ID: 7, Email: "user@example.com", Role: domain.RoleAdmin}

	token, err := svc.GenerateToken(user)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestService_Expired(t *testing.T) {
	svc := NewService("test-secret", -time.Minute)
	token, err := svc.GenerateToken(&domain.User{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestService_WrongSecret(t *testing.T) {
	token, err := NewService("one", time.Hour).GenerateToken(&domain.User{ID: 1, Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = NewService("two", time.Hour).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewService("two", time.Hour).ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
