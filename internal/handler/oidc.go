package handler

import (
	"log"
	"net/http"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
)

const oidcStateCookie = "oidcState"

type OIDCHandler struct {
	svc       *service.OIDCService
	auth      *service.AuthService
	cookieCfg CookieConfig
}

func NewOIDCHandler(svc *service.OIDCService, auth *service.AuthService, cookieCfg CookieConfig) *OIDCHandler {
	return &OIDCHandler{svc: svc, auth: auth, cookieCfg: cookieCfg}
}

// Login godoc
// @Summary Start an OIDC provider login
// @Description Redirects to the configured provider. Responds 403 when OIDC is not configured.
// @Tags auth
// @Success 307
// @Failure 403 {object} model.ErrorResponse
// @Router /auth/oidc/login [get]
func (h *OIDCHandler) Login(c *gin.Context) {
	if !h.svc.Enabled() {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "oidc login disabled"})
		return
	}

	state, err := service.NewState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "server error"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(oidcStateCookie, state, 300, "/", h.cookieCfg.Domain, h.cookieCfg.Secure, true)
	c.Redirect(http.StatusTemporaryRedirect, h.svc.LoginURL(state))
}

// Callback godoc
// @Summary OIDC provider callback
// @Description Verifies the provider response and issues a normal session.
// @Tags auth
// @Produce json
// @Param code query string true "Authorization code"
// @Param state query string true "State echoed by the provider"
// @Success 200 {object} model.AuthResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /auth/oidc/callback [get]
func (h *OIDCHandler) Callback(c *gin.Context) {
	if !h.svc.Enabled() {
		c.JSON(http.StatusForbidden, model.ErrorResponse{Error: "oidc login disabled"})
		return
	}

	state, err := c.Cookie(oidcStateCookie)
	if err != nil || state == "" || c.Query("state") != state {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "state mismatch"})
		return
	}
	c.SetCookie(oidcStateCookie, "", -1, "/", h.cookieCfg.Domain, h.cookieCfg.Secure, true)

	email, name, err := h.svc.Exchange(c.Request.Context(), c.Query("code"))
	if err != nil {
		writeServiceError(c, err, "")
		return
	}
	log.Printf("[auth] oidc login for %s", email)

	session, err := h.auth.LoginWithOIDC(c.Request.Context(), email, name)
	if err != nil {
		writeServiceError(c, err, "email")
		return
	}

	c.SetSameSite(h.cookieCfg.SameSite)
	c.SetCookie(refreshCookieName, session.RefreshToken, h.cookieCfg.MaxAge, h.cookieCfg.Path, h.cookieCfg.Domain, h.cookieCfg.Secure, true)
	c.JSON(http.StatusOK, model.AuthResponse{
		User:        model.NewUserDto(session.User),
		AccessToken: session.AccessToken,
	})
}
