package handler

import (
	"log"
	"net/http"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refreshToken"

// CookieConfig controls the refresh token cookie. Defaults match the
// cross-site frontend: HttpOnly, Secure, SameSite=None, 30 days.
type CookieConfig struct {
	Path     string
	Domain   string
	Secure   bool
	SameSite http.SameSite
	MaxAge   int
}

type AuthHandler struct {
	svc       *service.AuthService
	cookieCfg CookieConfig
}

func NewAuthHandler(svc *service.AuthService, cookieCfg CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookieCfg: cookieCfg}
}

// Signup godoc
// @Summary Register a new account
// @Description Creates an unverified account and mails a verification code.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.SignupRequest true "Email, password, and display name"
// @Success 200 {object} model.UserDto
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	log.Printf("[auth] signup attempt for %s", req.Email)

	user, err := h.svc.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		// A delivery failure still created the account; the caller is told
		// so a resend can recover.
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.NewUserDto(user))
}

// Login godoc
// @Summary Login with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Credentials"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	log.Printf("[auth] login attempt for %s", req.Email)

	session, err := h.svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(c, err, "email")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, model.AuthResponse{
		User:        model.NewUserDto(session.User),
		AccessToken: session.AccessToken,
	})
}

// Verify godoc
// @Summary Verify an account with the mailed code
// @Description Consuming the code verifies the account and logs the user in.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.VerifyRequest true "Email and code"
// @Success 200 {object} model.VerifyResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/verify [post]
func (h *AuthHandler) Verify(c *gin.Context) {
	var req model.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	log.Printf("[auth] verification attempt for %s", req.Email)

	session, err := h.svc.VerifyUser(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(c, err, "code")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, model.VerifyResponse{
		Token:       session.AutoLoginToken,
		User:        model.NewUserDto(session.User),
		AccessToken: session.AccessToken,
	})
}

// AutoLogin godoc
// @Summary Login with a one-shot token from an email link
// @Tags auth
// @Produce json
// @Param token query string true "Auto-login token"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/auto-login [post]
func (h *AuthHandler) AutoLogin(c *gin.Context) {
	log.Printf("[auth] auto-login attempt")

	session, err := h.svc.ProcessAutoLogin(c.Request.Context(), c.Query("token"))
	if err != nil {
		writeServiceError(c, err, "token")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, model.AuthResponse{
		User:        model.NewUserDto(session.User),
		AccessToken: session.AccessToken,
	})
}

// Refresh godoc
// @Summary Refresh the access token
// @Description Uses the refreshToken cookie; the refresh value is echoed, not rotated.
// @Tags auth
// @Produce json
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)

	session, err := h.svc.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		writeServiceError(c, err, "")
		return
	}

	h.setRefreshCookie(c, session.RefreshToken)
	c.JSON(http.StatusOK, model.AuthResponse{
		User:        model.NewUserDto(session.User),
		AccessToken: session.AccessToken,
	})
}

// Resend godoc
// @Summary Resend the verification code
// @Description Overwrites the pending code; the previous one becomes invalid.
// @Tags auth
// @Produce json
// @Param email query string true "Account email"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /auth/resend [post]
func (h *AuthHandler) Resend(c *gin.Context) {
	email := c.Query("email")
	log.Printf("[auth] resend verification code for %s", email)

	if err := h.svc.ResendVerificationCode(c.Request.Context(), email); err != nil {
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "verification code sent"})
}

// Logout godoc
// @Summary Logout
// @Description Clears the stored refresh token and the cookie. Idempotent.
// @Tags auth
// @Produce json
// @Success 200 {object} model.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)

	if refreshToken != "" {
		if email, err := h.svc.Tokens().ExtractRefreshSubject(refreshToken); err == nil {
			if err := h.svc.Logout(c.Request.Context(), email); err != nil {
				log.Printf("[auth] logout for %s failed: %v", email, err)
			}
		} else {
			log.Printf("[auth] logout with undecodable refresh token: %v", err)
		}
	}

	h.clearRefreshCookie(c)
	c.JSON(http.StatusOK, model.MessageResponse{Message: "logged out"})
}

// Recovery godoc
// @Summary Request a password recovery code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RecoveryRequest true "Account email"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/recovery [post]
func (h *AuthHandler) Recovery(c *gin.Context) {
	var req model.RecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	log.Printf("[auth] password recovery request for %s", req.Email)

	if err := h.svc.RequestPasswordRecovery(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "recovery code sent"})
}

// RecoveryResend godoc
// @Summary Resend the recovery code
// @Description Overwrites the pending code; the previous one becomes invalid.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RecoveryRequest true "Account email"
// @Success 200 {object} model.MessageResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/recovery/resend [post]
func (h *AuthHandler) RecoveryResend(c *gin.Context) {
	var req model.RecoveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	log.Printf("[auth] resend recovery code for %s", req.Email)

	if err := h.svc.ResendRecoveryCode(c.Request.Context(), req.Email); err != nil {
		writeServiceError(c, err, "email")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "recovery code sent again"})
}

// ResetPassword godoc
// @Summary Reset the password with a recovery code
// @Description Consumes the code, replaces the password, and invalidates any live session.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ResetPasswordRequest true "Email, code, and new password"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /auth/reset-password [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "invalid request"})
		return
	}
	log.Printf("[auth] password reset attempt for %s", req.Email)

	if err := h.svc.ResetPassword(c.Request.Context(), req.Email, req.Code, req.NewPassword); err != nil {
		writeServiceError(c, err, "code")
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "password changed"})
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(h.cookieCfg.SameSite)
	c.SetCookie(refreshCookieName, token, h.cookieCfg.MaxAge, h.cookieCfg.Path, h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(h.cookieCfg.SameSite)
	c.SetCookie(refreshCookieName, "", -1, h.cookieCfg.Path, h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}
