package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegehub-edu/portal-service/internal/config"
	"github.com/collegehub-edu/portal-service/internal/models"
	"github.com/collegehub-edu/portal-service/internal/services"
	"github.com/collegehub-edu/portal-service/internal/utils"
)

// refreshCookiePath scopes the refresh cookie to the refresh endpoint so it
// is never sent with ordinary API calls.
const refreshCookiePath = "/api/v1/auth/refresh"

type AuthHandler struct {
	BaseHandler
	authService services.AuthService
	cookieCfg   config.AuthConfig
}

func NewAuthHandler(authService services.AuthService, cookieCfg config.AuthConfig, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(logger),
		authService: authService,
		cookieCfg:   cookieCfg,
	}
}

type authResponse struct {
	Success     bool                  `json:"success"`
	Message     string                `json:"message,omitempty"`
	AccessToken string                `json:"accessToken"`
	User        *models.SanitizedUser `json:"user"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	h.LogRequest(c, "register")

	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	result, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusCreated, authResponse{
		Success:     true,
		Message:     "Registration successful.",
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	h.LogRequest(c, "login")

	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, authResponse{
		Success:     true,
		Message:     "Login successful.",
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Refresh exchanges the cookie-borne refresh token for a fresh pair. Any
// failure clears the cookie so the client does not retry a dead token.
func (h *AuthHandler) Refresh(c *gin.Context) {
	rawToken, _ := c.Cookie(h.cookieCfg.CookieName)

	result, err := h.authService.Refresh(c.Request.Context(), rawToken)
	if err != nil {
		h.clearRefreshCookie(c)
		h.RespondError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken)
	c.JSON(http.StatusOK, authResponse{
		Success:     true,
		AccessToken: result.AccessToken,
		User:        result.User,
	})
}

// Logout always succeeds; an absent or invalid cookie is not an error.
func (h *AuthHandler) Logout(c *gin.Context) {
	rawToken, _ := c.Cookie(h.cookieCfg.CookieName)

	if err := h.authService.Logout(c.Request.Context(), rawToken); err != nil {
		h.RespondError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out."})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	user, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.RespondError(c, services.ErrMissingAccessToken)
		return
	}

	var req services.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondBindError(c, err)
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), userID, &req); err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated."})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(sameSiteMode(h.cookieCfg.CookieSameSite))
	c.SetCookie(
		h.cookieCfg.CookieName,
		token,
		int(h.cookieCfg.RefreshTokenTTL.Seconds()),
		refreshCookiePath,
		"",
		h.cookieCfg.CookieSecure,
		true,
	)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cookieCfg.CookieSameSite))
	c.SetCookie(h.cookieCfg.CookieName, "", -1, refreshCookiePath, "", h.cookieCfg.CookieSecure, true)
}

func sameSiteMode(value string) http.SameSite {
	switch value {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
