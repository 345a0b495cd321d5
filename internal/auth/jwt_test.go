package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func newTestJWTService() *JWTService {
	return NewJWTService(testSecret, 24*time.Hour)
}

// ============================================
// Guest Session Tests
// ============================================

func TestJWTService_NewGuestSession(t *testing.T) {
	service := newTestJWTService()

	sess, err := service.NewGuestSession()

	require.NoError(t, err)
	assert.Len(t, sess.UserID, 36)
	assert.NotEmpty(t, sess.Token)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), sess.ExpiresAt, time.Minute)

	claims, err := service.ValidateToken(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, claims.UserID)
	assert.Equal(t, RoleGuest, claims.Role)
	assert.Equal(t, sess.UserID, claims.Subject)
}

func TestJWTService_GuestSessionsAreDistinct(t *testing.T) {
	service := newTestJWTService()

	a, err := service.NewGuestSession()
	require.NoError(t, err)
	b, err := service.NewGuestSession()
	require.NoError(t, err)

	assert.NotEqual(t, a.UserID, b.UserID)
	assert.NotEqual(t, a.Token, b.Token)
}

// ============================================
// ValidateToken Tests
// ============================================

func TestJWTService_ValidateToken_Expired(t *testing.T) {
	service := newTestJWTService()
	service.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	token, _, err := service.GenerateToken("user-1", RoleGuest)
	require.NoError(t, err)

	service.now = time.Now
	_, err = service.ValidateToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTService_ValidateToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := service.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestJWTService_ValidateToken_WrongSignature(t *testing.T) {
	other := NewJWTService("another-secret-key-for-testing-only", time.Hour)
	token, _, err := other.GenerateToken("user-1", RoleGuest)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateToken_WrongAlgorithm(t *testing.T) {
	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ValidateToken_MissingUserID(t *testing.T) {
	service := newTestJWTService()
	token, _, err := service.GenerateToken("", RoleGuest)
	require.NoError(t, err)

	_, err = service.ValidateToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}
