package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

// ProbeMiddleware runs the probe filter on every inbound request before any
// application handling. Rejections are classified control flow, never
// errors: the middleware renders the response itself.
type ProbeMiddleware struct {
	probe  ports.ProbeService
	logger *logrus.Logger
}

func NewProbeMiddleware(probe ports.ProbeService, logger *logrus.Logger) *ProbeMiddleware {
	return &ProbeMiddleware{probe: probe, logger: logger}
}

func (m *ProbeMiddleware) Handler() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rej := m.probe.Evaluate(
				req.Context(),
				req.URL.Path,
				req.UserAgent(),
				c.QueryParams(),
				helpers.ClientKey(c),
			)
			if rej == nil {
				return next(c)
			}
			RejectionsTotal().WithLabelValues(string(rej.Reason)).Inc()
			return writeRejection(c, rej)
		}
	}
}
