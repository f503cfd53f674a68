package handlers

import (
	"net/http"

	"agrodocs_backend/internal/middleware"
	"agrodocs_backend/internal/services"
	"agrodocs_backend/internal/services/dto"
	"agrodocs_backend/internal/validator"
	"agrodocs_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	refreshCookieName = "refreshToken"
	xsrfCookieName    = "XSRF-TOKEN"
	// refreshCookiePath keeps the HttpOnly refresh cookie off every request
	// except the auth endpoints.
	refreshCookiePath = "/api/v1/auth"
)

// CookieSettings control the attributes of the auth cookies.
type CookieSettings struct {
	Domain string
	Secure bool
}

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
	cookies     CookieSettings
	authMW      gin.HandlerFunc
	limiterMW   gin.HandlerFunc
}

func NewAuthHandler(v *validator.Validator, authService services.AuthService, cookies CookieSettings, authMW, limiterMW gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{
		BaseHandler: NewBaseHandler(v),
		authService: authService,
		cookies:     cookies,
		authMW:      authMW,
		limiterMW:   limiterMW,
	}
}

func (h *AuthHandler) RegisterRoutes(api *gin.RouterGroup) {
	auth := api.Group("/auth")
	{
		if h.limiterMW != nil {
			auth.POST("/register", h.limiterMW, h.Register)
			auth.POST("/login", h.limiterMW, h.Login)
		} else {
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
		}
		auth.POST("/refresh", h.Refresh)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", h.authMW, h.Me)
		auth.GET("/validate", h.authMW, h.Validate)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, resp.AccessToken, resp.RefreshToken)
	c.JSON(http.StatusOK, resp)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	token := h.refreshTokenFromRequest(c)
	if token == "" {
		h.HandleServiceError(c, apperrors.ErrMissingRefreshToken)
		return
	}

	pair, err := h.authService.Refresh(c.Request.Context(), h.GetDB(c), token)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	h.setAuthCookies(c, pair.AccessToken, pair.RefreshToken)
	c.JSON(http.StatusOK, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	// Logout succeeds even without a live session.
	if token := h.refreshTokenFromRequest(c); token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			h.HandleServiceError(c, err)
			return
		}
	}

	h.clearAuthCookies(c)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": principal})
}

// Validate is a cheap liveness probe for the frontend: it answers 200 whenever
// the presented token still maps to an existing user.
func (h *AuthHandler) Validate(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		h.HandleServiceError(c, apperrors.ErrMissingToken)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "user_id": principal.ID})
}

// refreshTokenFromRequest prefers the JSON body and falls back to the cookie.
func (h *AuthHandler) refreshTokenFromRequest(c *gin.Context) string {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err == nil && req.RefreshToken != "" {
		return req.RefreshToken
	}
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		return cookie
	}
	return ""
}

func (h *AuthHandler) setAuthCookies(c *gin.Context, accessToken, refreshToken string) {
	accessMaxAge := int(services.RefreshTokenTTL.Seconds())

	// Access token is readable by the frontend; the refresh token never is.
	c.SetCookie(middleware.AuthCookieName, accessToken, accessMaxAge, "/", h.cookies.Domain, h.cookies.Secure, false)
	c.SetCookie(refreshCookieName, refreshToken, accessMaxAge, refreshCookiePath, h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(xsrfCookieName, uuid.NewString(), accessMaxAge, "/", h.cookies.Domain, h.cookies.Secure, false)
}

func (h *AuthHandler) clearAuthCookies(c *gin.Context) {
	c.SetCookie(middleware.AuthCookieName, "", -1, "/", h.cookies.Domain, h.cookies.Secure, false)
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, h.cookies.Domain, h.cookies.Secure, true)
	c.SetCookie(xsrfCookieName, "", -1, "/", h.cookies.Domain, h.cookies.Secure, false)
}
