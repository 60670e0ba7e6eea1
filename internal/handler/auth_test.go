package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(t *testing.T) (*gin.Engine, *service.TokenService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tokens, err := service.NewTokenService("test-secret", 15*time.Minute, 15*time.Minute, time.Hour)
	require.NoError(t, err)
	codes := service.NewCodeGenerator(time.Hour, time.Hour)
	store := &gateStore{user: &model.User{ID: 1, Email: "alice@example.com", Verified: true}}
	auth := service.NewAuthService(store, tokens, codes, silentMailer{}, "http://localhost")

	cookieCfg := CookieConfig{Path: "/", Secure: true, SameSite: http.SameSiteNoneMode, MaxAge: 3600}
	h := NewAuthHandler(auth, cookieCfg)

	r := gin.New()
	r.POST("/auth/refresh", h.Refresh)
	r.POST("/auth/logout", h.Logout)
	r.GET("/auth/auto-login", h.AutoLogin)
	r.POST("/auth/signup", h.Signup)
	return r, tokens
}

func TestRefreshWithoutCookie(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/refresh", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Contains(t, w.Body.String(), "missing token")
}

func TestLogoutWithoutCookieStillClears(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/logout", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var cleared bool
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "refreshToken" && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	require.True(t, cleared, "expected the refresh cookie to be expired")
}

func TestAutoLoginSetsRefreshCookie(t *testing.T) {
	r, tokens := newAuthTestRouter(t)

	token, err := tokens.IssueAutoLoginToken("alice@example.com")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/auto-login?token="+token, nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "alice@example.com")

	var found *http.Cookie
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == "refreshToken" {
			found = cookie
		}
	}
	require.NotNil(t, found, "expected a refresh cookie")
	require.True(t, found.HttpOnly)
	require.True(t, found.Secure)
	require.NotEmpty(t, found.Value)
}

func TestAutoLoginRejectsBadToken(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/auto-login?token=junk", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSignupRejectsMalformedBody(t *testing.T) {
	r, _ := newAuthTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
