package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"codearena/internal/service"
)

// AuthHandler mantiene dependencias para los endpoints de login y sesion.
type AuthHandler struct {
	logger        *zap.Logger
	userServ      *service.UserService
	sessions      *service.SessionService
	sso           *service.SSOService
	secureCookies bool
}

// NewAuthHandler crea una instancia de AuthHandler con dependencias necesarias.
func NewAuthHandler(logger *zap.Logger, userServ *service.UserService, sessions *service.SessionService, sso *service.SSOService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		logger:        logger,
		userServ:      userServ,
		sessions:      sessions,
		sso:           sso,
		secureCookies: secureCookies,
	}
}

// SSOLogin maneja POST /auth/sso: valida la afirmacion firmada del portal del
// colegio y abre sesion para el usuario resuelto.
func (h *AuthHandler) SSOLogin(c *gin.Context) {
	var req struct {
		Assertion string `json:"assertion" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sso request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if h.sso == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "sso not configured"})
		return
	}

	claims, err := h.sso.VerifyAssertion(req.Assertion)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid assertion"})
		return
	}

	user, err := h.userServ.UpsertSSOUser(c.Request.Context(), service.SSOInput{
		Provider:    "portal",
		Subject:     claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		SchoolID:    claims.SchoolID,
	})
	if err != nil {
		if errors.Is(err, service.ErrOAuthInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid assertion"})
			return
		}
		h.logger.Error("sso login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		return
	}

	if !h.openSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequestOTP maneja POST /auth/otp/request.
func (h *AuthHandler) RequestOTP(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, err := h.userServ.RequestOTP(c.Request.Context(), req.Email, req.DisplayName)
	if err != nil {
		if errors.Is(err, service.ErrEmailSendFailure) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "email delivery unavailable"})
			return
		}
		if errors.Is(err, service.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		h.logger.Error("request otp failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not request otp"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "otp_sent"})
}

// VerifyOTP maneja POST /auth/otp/verify y abre sesion si el codigo es valido.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required,email"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid otp verify request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		case errors.Is(err, service.ErrOTPNotRequested),
			errors.Is(err, service.ErrOTPExpired),
			errors.Is(err, service.ErrOTPInvalid):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		default:
			h.logger.Error("verify otp failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not verify otp"})
			return
		}
	}

	if !h.openSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PasswordLogin maneja POST /auth/login; login con password, pensado para
// cuentas administrativas.
func (h *AuthHandler) PasswordLogin(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	user, err := h.userServ.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not login"})
		return
	}

	if !h.openSession(c, user.ID) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout maneja POST /auth/logout: borra la sesion del store y la cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if session, ok := CurrentSession(c); ok {
		if err := h.sessions.Invalidate(c.Request.Context(), session.ID); err != nil {
			h.logger.Error("logout failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not logout"})
			return
		}
	}
	clearSessionCookie(c, h.secureCookies)
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

// Me maneja GET /auth/me.
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// openSession genera el token opaco, persiste la sesion y setea la cookie.
// Responde el error al cliente y devuelve false si algo falla.
func (h *AuthHandler) openSession(c *gin.Context, userID string) bool {
	token, err := service.GenerateToken()
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open session"})
		return false
	}
	session, err := h.sessions.CreateSession(c.Request.Context(), token, userID)
	if err != nil {
		h.logger.Error("create session failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not open session"})
		return false
	}
	setSessionCookie(c, token, session.ExpiresAt, h.secureCookies)
	return true
}
