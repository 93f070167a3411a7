package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/auth"
	"github.com/doorsets/backend/internal/infrastructure/logger"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	JWTUserIDKey  = "jwt_user_id"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator checks an access token, including revocation
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Validator TokenValidator
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that don't require authentication
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuthMiddlewareWithConfig requires a valid bearer token on every path
// not skipped and stores its claims in the gin and request contexts
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range cfg.SkipPaths {
			if path == p {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader(AuthHeaderKey)
		token, ok := strings.CutPrefix(header, BearerPrefix)
		token = strings.TrimSpace(token)
		if header == "" || !ok || token == "" {
			log.Debug("Missing or malformed authorization header", zap.String("path", path))
			abortWithError(c, dto.ErrCodeUnauthorized)
			return
		}

		claims, err := cfg.Validator.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			var de *shared.DomainError
			if errors.As(err, &de) {
				log.Debug("JWT authentication failed", zap.String("code", de.Code), zap.String("path", path))
				abortWithError(c, de.Code, de.Message)
				return
			}
			log.Error("Token validation error", zap.Error(err))
			abortWithError(c, dto.ErrCodeInternal)
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

// RequireAdmin lets only admin users through. It must run after the JWT
// middleware.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortWithError(c, dto.ErrCodeUnauthorized)
			return
		}
		if !claims.IsAdmin() {
			abortWithError(c, dto.ErrCodeForbidden, "This action requires an administrator")
			return
		}
		c.Next()
	}
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetJWTUserID returns the authenticated user ID, or 0
func GetJWTUserID(c *gin.Context) uint {
	return c.GetUint(JWTUserIDKey)
}
