package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

// LoggingMiddleware emits one structured line per request, carrying the
// masked client key so edge decisions can be correlated with traffic.
type LoggingMiddleware struct {
	logger *logrus.Logger
}

func NewLoggingMiddleware(logger *logrus.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (m *LoggingMiddleware) RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m.logger == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			fields := logrus.Fields{
				"method":      c.Request().Method,
				"path":        c.Request().URL.Path,
				"status":      c.Response().Status,
				"duration_ms": time.Since(start).Milliseconds(),
				"client":      admission.MaskIdentifier(helpers.ClientKey(c)),
			}
			if id := c.Response().Header().Get(echo.HeaderXRequestID); id != "" {
				fields["request_id"] = id
			}
			if err != nil {
				m.logger.WithFields(fields).WithError(err).Warn("request failed")
				return err
			}
			m.logger.WithFields(fields).Info("request handled")
			return nil
		}
	}
}
