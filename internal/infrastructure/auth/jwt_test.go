package auth

import (
	"testing"
	"time"

	"github.com/doorsets/backend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "test-secret-key-at-least-32-chars",
		RefreshSecret:          "test-refresh-secret-key-32-chars",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "doorsets-test",
		MaxRefreshCount:        2,
	})
}

func testSubject() Subject {
	return Subject{UserID: 7, Username: "alice", Role: "admin"}
}

func TestNewJWTService_UsesSecretForRefreshIfNotProvided(t *testing.T) {
	svc := NewJWTService(config.JWTConfig{Secret: "only-secret"})
	assert.Equal(t, []byte("only-secret"), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))

	t.Run("zero user id rejected", func(t *testing.T) {
		_, err := svc.GenerateTokenPair(Subject{})
		assert.ErrorIs(t, err, ErrMissingUserID)
	})
}

func TestValidateAccessToken(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.True(t, claims.IsAdmin())
		assert.Equal(t, "7", claims.Subject)
		assert.NotEmpty(t, claims.ID)
		assert.Greater(t, claims.GetRemainingTTL(), 14*time.Minute)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		_, err := svc.ValidateAccessToken(pair.RefreshToken)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  -time.Hour,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "doorsets-test",
		})
		p, err := expired.GenerateTokenPair(testSubject())
		require.NoError(t, err)
		_, err = expired.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                 "test-secret-key-at-least-32-chars",
			AccessTokenExpiration:  time.Minute,
			RefreshTokenExpiration: time.Hour,
			Issuer:                 "someone-else",
		})
		p, err := other.GenerateTokenPair(testSubject())
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(p.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong signing method", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, TokenType: TokenTypeAccess})
		raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateAccessToken(raw)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	svc := newTestJWTService()
	pair, err := svc.GenerateTokenPair(testSubject())
	require.NoError(t, err)

	claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 0, claims.RefreshCount)
	assert.Empty(t, claims.Role)

	next, err := svc.RefreshTokenPair(claims, testSubject())
	require.NoError(t, err)
	nextClaims, err := svc.ValidateRefreshToken(next.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, 1, nextClaims.RefreshCount)
	assert.NotEqual(t, claims.ID, nextClaims.ID)

	t.Run("role comes from the current subject", func(t *testing.T) {
		staff := testSubject()
		staff.Role = "staff"
		p, err := svc.RefreshTokenPair(claims, staff)
		require.NoError(t, err)
		access, err := svc.ValidateAccessToken(p.AccessToken)
		require.NoError(t, err)
		assert.False(t, access.IsAdmin())
	})

	t.Run("refresh count is capped", func(t *testing.T) {
		capped := *nextClaims
		capped.RefreshCount = 2
		_, err := svc.RefreshTokenPair(&capped, testSubject())
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("subject mismatch", func(t *testing.T) {
		_, err := svc.RefreshTokenPair(claims, Subject{UserID: 99})
		assert.ErrorIs(t, err, ErrInvalidClaims)
	})

	t.Run("access claims cannot refresh", func(t *testing.T) {
		access, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		_, err = svc.RefreshTokenPair(access, testSubject())
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}
