package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/eventbuddy/backend/internal/config"
	"github.com/eventbuddy/backend/internal/service"
)

// NewCookieConfig validates the cookie knobs at startup. SameSite=None with an
// insecure cookie is rejected because browsers drop it.
func NewCookieConfig(cfg config.AuthConfig, refreshTTL time.Duration) (CookieConfig, error) {
	secure, err := parseBool(cfg.CookieSecure, true)
	if err != nil {
		return CookieConfig{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SECURE", service.ErrMisconfigured)
	}

	sameSite, err := parseSameSite(cfg.CookieSameSite)
	if err != nil {
		return CookieConfig{}, fmt.Errorf("%w: invalid AUTH_COOKIE_SAMESITE", service.ErrMisconfigured)
	}

	if sameSite == http.SameSiteNoneMode && !secure {
		return CookieConfig{}, fmt.Errorf("%w: SameSite=None requires Secure cookie", service.ErrMisconfigured)
	}

	path := strings.TrimSpace(cfg.CookiePath)
	if path == "" {
		path = "/"
	}

	return CookieConfig{
		Path:     path,
		Domain:   cfg.CookieDomain,
		Secure:   secure,
		SameSite: sameSite,
		MaxAge:   int(refreshTTL.Seconds()),
	}, nil
}

func parseBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func parseSameSite(value string) (http.SameSite, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "none":
		return http.SameSiteNoneMode, nil
	case "lax":
		return http.SameSiteLaxMode, nil
	case "strict":
		return http.SameSiteStrictMode, nil
	default:
		return 0, fmt.Errorf("unknown SameSite value %q", value)
	}
}
