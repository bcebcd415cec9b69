package devserver

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute)

	token, err := svc.Generate("user-1", "test@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := svc.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "test@example.com", claims.Subject)
	assert.Equal(t, "valtokens-devserver", claims.Issuer)
	assert.Equal(t, 15*time.Minute, svc.Expiry())
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc1 := NewTokenService("secret-1", 15*time.Minute)
	svc2 := NewTokenService("secret-2", 15*time.Minute)

	token, err := svc1.Generate("user-1", "test@example.com")
	require.NoError(t, err)

	_, err = svc2.Validate(token)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse token")
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("test-secret", time.Minute)
	now := time.Now()
	svc.now = func() time.Time { return now }

	token, err := svc.Generate("user-1", "test@example.com")
	require.NoError(t, err)

	svc.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = svc.Validate(token)

	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenService_WrongIssuer(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute)

	claims := Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "test@example.com",
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Validate(token)

	assert.ErrorIs(t, err, jwt.ErrTokenInvalidIssuer)
}

func TestTokenService_RejectsNoneAlgorithm(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "test@example.com",
			Issuer:    tokenIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.Validate(token)

	assert.Error(t, err)
}

func TestTokenService_Malformed(t *testing.T) {
	svc := NewTokenService("test-secret", 15*time.Minute)

	_, err := svc.Validate("not-a-jwt")

	assert.Error(t, err)
}
