package identity

import (
	"context"
	"errors"
	"time"

	"github.com/doorsets/backend/internal/domain/identity"
	"github.com/doorsets/backend/internal/domain/shared"
	"github.com/doorsets/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Authentication errors. Unknown users and wrong passwords share one message.
var (
	ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	ErrAccountLocked      = shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later")
	ErrAccountDisabled    = shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	ErrTokenExpired       = shared.NewDomainError("TOKEN_EXPIRED", "Token has expired")
	ErrTokenInvalid       = shared.NewDomainError("TOKEN_INVALID", "Invalid token")
	ErrTokenRevoked       = shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	ErrTokenMaxRefresh    = shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication and account operations
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
	now        func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
		now:        time.Now,
	}
}

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	now := s.now()

	user, err := s.userRepo.FindByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown user", zap.String("username", req.Username))
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.IsActive {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", user.Username))
		return nil, ErrAccountDisabled
	}
	if user.IsLocked(now) {
		s.logger.Warn("Login attempt for locked account", zap.String("username", user.Username))
		return nil, ErrAccountLocked
	}

	if !user.VerifyPassword(req.Password) {
		locked := user.RecordLoginFailure(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Save(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("username", user.Username),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, ErrAccountLocked
		}
		s.logger.Warn("Invalid password attempt",
			zap.String("username", user.Username),
			zap.Int("failed_attempts", user.FailedLoginAttempts))
		return nil, ErrInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(subjectOf(user))
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, err
	}

	user.RecordLoginSuccess(now)
	if err := s.userRepo.Save(ctx, user); err != nil {
		// The tokens are valid either way
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	return &LoginResponse{TokenResponse: tokenResponse(pair), User: ToUserResponse(user)}, nil
}

// RefreshToken rotates a token pair. The presented refresh token is revoked.
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !user.CanLogin(s.now()) {
		s.logger.Warn("Token refresh for inactive user", zap.Uint("user_id", user.ID))
		return nil, ErrAccountDisabled
	}

	pair, err := s.jwtService.RefreshTokenPair(claims, subjectOf(user))
	if err != nil {
		s.logger.Warn("Token refresh failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, tokenError(err)
	}
	if err := s.revoke(ctx, claims); err != nil {
		return nil, err
	}

	s.logger.Debug("Token refreshed", zap.Uint("user_id", user.ID), zap.Int("refresh_count", claims.RefreshCount+1))
	resp := tokenResponse(pair)
	return &resp, nil
}

// Logout revokes the caller's access token and, when given, the refresh token
func (s *AuthService) Logout(ctx context.Context, access *auth.Claims, req LogoutRequest) error {
	if err := s.revoke(ctx, access); err != nil {
		return err
	}
	if req.RefreshToken != "" {
		refresh, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
		switch {
		case err != nil:
			// Already unusable; nothing to revoke
			s.logger.Debug("Ignoring invalid refresh token on logout", zap.Error(err))
		case refresh.UserID != access.UserID:
			return ErrTokenInvalid
		default:
			if err := s.revoke(ctx, refresh); err != nil {
				return err
			}
		}
	}
	s.logger.Info("User logged out", zap.Uint("user_id", access.UserID))
	return nil
}

// Me returns the current user
func (s *AuthService) Me(ctx context.Context, userID uint) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// Register creates a user. Role defaults to staff.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	role := identity.Role(req.Role)
	if role == "" {
		role = identity.RoleStaff
	}
	exists, err := s.userRepo.ExistsByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "Username "+req.Username+" is already taken")
	}

	user, err := identity.NewUser(req.Username, req.Email, req.DisplayName, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User registered", zap.String("username", user.Username), zap.String("role", string(user.Role)))
	resp := ToUserResponse(user)
	return &resp, nil
}

// ChangePassword replaces the caller's password and revokes every token
// issued to them before now
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.ChangePassword(req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if s.blacklist != nil {
		if err := s.blacklist.InvalidateUserTokens(ctx, user.ID, s.jwtService.GetRefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens after password change", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	s.logger.Info("User password changed", zap.Uint("user_id", user.ID))
	return nil
}

// Bootstrap creates the admin account when the database has no users. It
// does nothing without a password.
func (s *AuthService) Bootstrap(ctx context.Context, admin BootstrapAdmin) (bool, error) {
	if admin.Password == "" {
		return false, nil
	}
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	user, err := identity.NewUser(admin.Username, admin.Email, "Administrator", admin.Password, identity.RoleAdmin)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return false, err
	}
	s.logger.Info("Bootstrap admin created", zap.String("username", user.Username))
	return true, nil
}

// ValidateAccessToken checks signature, expiry and revocation of an access token
func (s *AuthService) ValidateAccessToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		return nil, tokenError(err)
	}
	if err := s.ensureNotRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (s *AuthService) ensureNotRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserTokenInvalidated(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return ErrTokenRevoked
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil || claims == nil || claims.ID == "" {
		return nil
	}
	ttl := claims.GetRemainingTTL()
	if ttl <= 0 {
		return nil
	}
	return s.blacklist.AddToBlacklist(ctx, claims.ID, ttl)
}

func subjectOf(u *identity.User) auth.Subject {
	return auth.Subject{UserID: u.ID, Username: u.Username, Role: string(u.Role)}
}

func tokenResponse(p *auth.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}

// tokenError maps JWT validation errors to domain errors
func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return ErrTokenExpired
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return ErrTokenMaxRefresh
	case errors.Is(err, auth.ErrTokenBlacklisted):
		return ErrTokenRevoked
	default:
		return ErrTokenInvalid
	}
}
