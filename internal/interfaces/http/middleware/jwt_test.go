package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/auth"
	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	if c := args.Get(0); c != nil {
		return c.(*auth.Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

func newJWTRouter(v TokenValidator) *gin.Engine {
	r := gin.New()
	r.Use(JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		Validator:        v,
		SkipPaths:        []string{"/health"},
		SkipPathPrefixes: []string{"/swagger"},
	}))
	r.GET("/health", okHandler)
	r.GET("/swagger/index.html", okHandler)
	r.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userId":    GetJWTUserID(c),
			"ctxUserId": logger.UserID(c.Request.Context()),
			"username":  GetJWTClaims(c).Username,
		})
	})
	admin := r.Group("/admin", RequireAdmin())
	admin.DELETE("/thing", okHandler)
	return r
}

func bearer(path, method, token string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	return req
}

func TestJWTAuthMiddleware(t *testing.T) {
	v := new(mockValidator)
	v.On("ValidateAccessToken", mock.Anything, "good").
		Return(&auth.Claims{UserID: 7, Username: "jo", Role: "staff"}, nil)
	v.On("ValidateAccessToken", mock.Anything, "admin").
		Return(&auth.Claims{UserID: 1, Username: "root", Role: "admin"}, nil)
	v.On("ValidateAccessToken", mock.Anything, "expired").
		Return(nil, shared.NewDomainError("TOKEN_EXPIRED", "Token has expired"))
	v.On("ValidateAccessToken", mock.Anything, "broken").
		Return(nil, errors.New("redis down"))
	r := newJWTRouter(v)

	t.Run("skip paths", func(t *testing.T) {
		assert.Equal(t, http.StatusOK, serve(r, bearer("/health", http.MethodGet, "")).Code)
		assert.Equal(t, http.StatusOK, serve(r, bearer("/swagger/index.html", http.MethodGet, "")).Code)
	})

	t.Run("missing header", func(t *testing.T) {
		w := serve(r, bearer("/me", http.MethodGet, ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrCodeUnauthorized, decodeEnvelope(t, w).Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(AuthHeaderKey, "Basic abc")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("valid token", func(t *testing.T) {
		w := serve(r, bearer("/me", http.MethodGet, "good"))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":7,"ctxUserId":7,"username":"jo"}`, w.Body.String())
	})

	t.Run("expired token keeps its code", func(t *testing.T) {
		w := serve(r, bearer("/me", http.MethodGet, "expired"))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		resp := decodeEnvelope(t, w)
		assert.Equal(t, "TOKEN_EXPIRED", resp.Code)
		assert.Equal(t, []string{"Token has expired"}, resp.Messages)
	})

	t.Run("validator failure", func(t *testing.T) {
		w := serve(r, bearer("/me", http.MethodGet, "broken"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("admin only", func(t *testing.T) {
		w := serve(r, bearer("/admin/thing", http.MethodDelete, "good"))
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrCodeForbidden, decodeEnvelope(t, w).Code)

		w = serve(r, bearer("/admin/thing", http.MethodDelete, "admin"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestRequireAdmin_WithoutClaims(t *testing.T) {
	r := gin.New()
	r.GET("/", RequireAdmin(), okHandler)
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
