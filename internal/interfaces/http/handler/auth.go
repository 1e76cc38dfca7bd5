package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	identityapp "github.com/velux/backend/internal/application/identity"
	"github.com/velux/backend/internal/interfaces/http/dto"
	"github.com/velux/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related API endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account and signs it in
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Login exchanges a username or email and password for a token pair
func (h *AuthHandler) Login(c *gin.Context) {
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

// Refresh rotates a refresh token into a new pair
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Logout revokes the refresh token in the body and the access token that
// authenticated the call. It answers 205 Reset Content.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}

	input := identityapp.LogoutInput{UserID: userID, RefreshToken: req.Refresh}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		input.AccessTokenJTI = claims.ID
		input.AccessTokenTTL = claims.GetRemainingTTL()
	}
	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusResetContent, dto.NewSuccessResponse(nil))
}

// Me returns the caller's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	user, err := h.authService.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateMe partially updates the caller's profile
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// GoogleLogin signs in with a Google id_token
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req identityapp.GoogleLoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.GoogleLogin(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
