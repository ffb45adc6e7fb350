package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gridcast-io/gridcast/internal/infrastructure/auth"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// SubjectContextKey is the context key for the authenticated token subject.
	SubjectContextKey contextKey = "token_subject"
)

// AuthConfig holds authentication middleware configuration.
type AuthConfig struct {
	// Validator checks bearer tokens. nil disables auth entirely,
	// which is the default for single-user deployments.
	Validator *auth.JWTValidator

	// Skipper defines a function to skip auth for certain routes.
	Skipper func(c echo.Context) bool
}

// RequireAuthMiddleware rejects requests without a valid bearer token.
// applied to write endpoints so read-only dashboards stay public.
func RequireAuthMiddleware(config AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Validator == nil {
				return next(c)
			}
			if config.Skipper != nil && config.Skipper(c) {
				return next(c)
			}

			token := auth.ExtractBearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			claims, err := config.Validator.ValidateToken(token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}

			c.Set(string(SubjectContextKey), claims.Subject)

			return next(c)
		}
	}
}

// GetTokenSubject retrieves the authenticated token subject from context.
// returns empty string if the request was anonymous.
func GetTokenSubject(c echo.Context) string {
	if val := c.Get(string(SubjectContextKey)); val != nil {
		if subject, ok := val.(string); ok {
			return subject
		}
	}
	return ""
}

// PublicRoutesSkipper returns a skipper function that skips auth for public routes.
func PublicRoutesSkipper(publicPaths ...string) func(echo.Context) bool {
	pathSet := make(map[string]bool)
	for _, p := range publicPaths {
		pathSet[p] = true
	}

	return func(c echo.Context) bool {
		return pathSet[c.Path()]
	}
}
