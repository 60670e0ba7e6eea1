package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/eventbuddy/backend/internal/model"
	"github.com/eventbuddy/backend/internal/service"
	"github.com/gin-gonic/gin"
)

const authUserKey = "auth_user"

// PublicPaths lists the route prefixes that bypass identity resolution.
var PublicPaths = []string{
	"/auth/",
	"/auto-login",
	"/uploads/",
	"/swagger-ui",
	"/v3/api-docs",
	"/openapi.json",
	"/ping",
}

// AuthGate resolves the caller's identity from the bearer access token.
//
// Public prefixes pass through untouched. A missing token also passes through
// unauthenticated; handlers that need an identity reject on their own. A token
// that is present but fails validation is a hard error and goes through the
// centralized responder. On success the identity is bound to the request
// context exactly once.
func AuthGate(auth *service.AuthService, publicPaths []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		for _, prefix := range publicPaths {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" {
			c.Next()
			return
		}

		user, err := auth.ResolveAccessToken(c.Request.Context(), token)
		if err != nil {
			writeServiceError(c, err, "")
			c.Abort()
			return
		}

		if _, exists := c.Get(authUserKey); !exists {
			c.Set(authUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser returns the identity bound by the gate, or nil.
func CurrentUser(c *gin.Context) *model.User {
	if value, ok := c.Get(authUserKey); ok {
		if user, ok := value.(*model.User); ok {
			return user
		}
	}
	return nil
}

// requireUser rejects with 401 when the gate bound no identity.
func requireUser(c *gin.Context) (*model.User, bool) {
	user := CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, model.ErrorResponse{Error: "authentication required"})
		return nil, false
	}
	return user, true
}

// writeServiceError is the single error responder: every expected failure maps
// to one consistent JSON shape.
func writeServiceError(c *gin.Context, err error, field string) {
	status := http.StatusInternalServerError
	message := "server error"

	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrDuplicateIdentity):
		status, message = http.StatusConflict, service.ErrDuplicateIdentity.Error()
	case errors.Is(err, service.ErrNotFound):
		status, message = http.StatusNotFound, service.ErrNotFound.Error()
	case errors.Is(err, service.ErrNotVerified):
		status, message = http.StatusForbidden, service.ErrNotVerified.Error()
	case errors.Is(err, service.ErrAlreadyVerified):
		status, message = http.StatusConflict, service.ErrAlreadyVerified.Error()
	case errors.Is(err, service.ErrBadCredentials):
		status, message = http.StatusUnauthorized, service.ErrBadCredentials.Error()
	case errors.Is(err, service.ErrInvalidToken):
		status, message = http.StatusUnauthorized, service.ErrInvalidToken.Error()
	case errors.Is(err, service.ErrMissingToken):
		status, message = http.StatusUnauthorized, service.ErrMissingToken.Error()
	case errors.Is(err, service.ErrNoCodePending):
		status, message = http.StatusBadRequest, service.ErrNoCodePending.Error()
	case errors.Is(err, service.ErrCodeExpired):
		status, message = http.StatusBadRequest, service.ErrCodeExpired.Error()
	case errors.Is(err, service.ErrCodeMismatch):
		status, message = http.StatusBadRequest, service.ErrCodeMismatch.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, service.ErrForbidden.Error()
	case errors.Is(err, service.ErrDelivery):
		status, message = http.StatusBadGateway, service.ErrDelivery.Error()
	}

	c.JSON(status, model.ErrorResponse{Error: message, Field: field})
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
