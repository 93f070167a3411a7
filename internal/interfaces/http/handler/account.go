package handler

import (
	identityapp "github.com/doorsets/backend/internal/application/identity"
	"github.com/doorsets/backend/internal/interfaces/http/dto"
	"github.com/doorsets/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles sign-in, token and user account endpoints
type AccountHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(authService *identityapp.AuthService) *AccountHandler {
	return &AccountHandler{authService: authService}
}

// Authenticate godoc
// @Summary      Sign in
// @Description  Returns an access and refresh token pair. Username also accepts an email address. Five failed attempts lock the account for 15 minutes.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identity.LoginResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Failure      423 {object} dto.Response
// @Router       /Account/authenticate [post]
func (h *AccountHandler) Authenticate(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Rotates the token pair. The presented refresh token is revoked.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.TokenResponse}
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Router       /Account/refresh-token [post]
func (h *AccountHandler) RefreshToken(c *gin.Context) {
	var req identityapp.RefreshTokenRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.RefreshToken(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the access token and, when given, the refresh token.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identity.LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /Account/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, dto.ErrCodeUnauthorized)
		return
	}
	var req identityapp.LogoutRequest
	// The body is optional
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.Logout(c.Request.Context(), claims, req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil, "Logged out")
}

// Me godoc
// @Summary      Current user
// @Tags         account
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserResponse}
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /Account/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	user, err := h.authService.Me(c.Request.Context(), middleware.GetJWTUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Register godoc
// @Summary      Create user
// @Description  Admin only. The role defaults to staff.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identity.RegisterRequest true "User"
// @Success      201 {object} dto.Response{data=identity.UserResponse}
// @Failure      400 {object} dto.Response
// @Failure      403 {object} dto.Response
// @Failure      409 {object} dto.Response
// @Security     BearerAuth
// @Router       /Account/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// ChangePassword godoc
// @Summary      Change own password
// @Description  Every token issued to the user before the change is revoked.
// @Tags         account
// @Accept       json
// @Produce      json
// @Param        request body identity.ChangePasswordRequest true "Passwords"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /Account/change-password [post]
func (h *AccountHandler) ChangePassword(c *gin.Context) {
	var req identityapp.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.authService.ChangePassword(c.Request.Context(), middleware.GetJWTUserID(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil, "Password changed. Please sign in again")
}
