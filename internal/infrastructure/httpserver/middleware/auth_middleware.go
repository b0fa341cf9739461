package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

// AuthMiddleware verifies the bearer token and stores the caller identity on
// the context for handlers and the admission middleware.
type AuthMiddleware struct {
	auth   ports.AuthService
	logger *logrus.Logger
}

func NewAuthMiddleware(auth ports.AuthService, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, logger: logger}
}

func (m *AuthMiddleware) RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := helpers.GetBearerTokenFromContext(c)
			if err != nil {
				return err
			}
			identity, err := m.auth.Verify(c.Request().Context(), token)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
			}
			helpers.SetIdentity(c, identity)
			return next(c)
		}
	}
}
