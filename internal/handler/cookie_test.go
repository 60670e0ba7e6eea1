package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/eventbuddy/backend/internal/config"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/stretchr/testify/require"
)

func TestCookieConfigDefaults(t *testing.T) {
	cfg, err := NewCookieConfig(config.AuthConfig{}, 720*time.Hour)
	require.NoError(t, err)
	require.Equal(t, "/", cfg.Path)
	require.True(t, cfg.Secure)
	require.Equal(t, http.SameSiteNoneMode, cfg.SameSite)
	require.Equal(t, int((720 * time.Hour).Seconds()), cfg.MaxAge)
}

func TestCookieConfigRejectsInsecureNone(t *testing.T) {
	_, err := NewCookieConfig(config.AuthConfig{CookieSecure: "false", CookieSameSite: "none"}, time.Hour)
	require.ErrorIs(t, err, service.ErrMisconfigured)

	// Lax without Secure is a legal dev setup.
	cfg, err := NewCookieConfig(config.AuthConfig{CookieSecure: "false", CookieSameSite: "lax"}, time.Hour)
	require.NoError(t, err)
	require.Equal(t, http.SameSiteLaxMode, cfg.SameSite)
}

func TestCookieConfigRejectsBadValues(t *testing.T) {
	_, err := NewCookieConfig(config.AuthConfig{CookieSecure: "maybe"}, time.Hour)
	require.ErrorIs(t, err, service.ErrMisconfigured)

	_, err = NewCookieConfig(config.AuthConfig{CookieSameSite: "sideways"}, time.Hour)
	require.ErrorIs(t, err, service.ErrMisconfigured)
}
