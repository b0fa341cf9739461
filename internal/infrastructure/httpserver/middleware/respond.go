package middleware

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
)

// rejectionBody is the JSON shape every policy/throttle rejection uses.
type rejectionBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// setRateHeaders sets the standard rate-limit metadata headers from a
// decision, for allowed and denied responses alike.
func setRateHeaders(c echo.Context, d admission.Decision) {
	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", d.Limit))
	h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", d.Remaining))
	h.Set("X-RateLimit-Reset", fmt.Sprintf("%d", d.ResetAt.Unix()))
}

// writeThrottled renders a 429 with Retry-After and rate-limit headers.
func writeThrottled(c echo.Context, d admission.Decision) error {
	setRateHeaders(c, d)
	if d.RetryAfter > 0 {
		c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", d.RetryAfter))
	}
	return c.JSON(http.StatusTooManyRequests, rejectionBody{
		Error:   "rate_limited",
		Message: "too many requests, slow down",
		Status:  http.StatusTooManyRequests,
	})
}

// writeRejection renders a probe rejection: 429 for throttling, 403 for
// everything else.
func writeRejection(c echo.Context, rej *admission.Rejection) error {
	if rej.Reason == admission.ReasonThrottle && rej.Decision != nil {
		return writeThrottled(c, *rej.Decision)
	}
	return c.JSON(http.StatusForbidden, rejectionBody{
		Error:   string(rej.Reason),
		Message: "request blocked by policy",
		Status:  http.StatusForbidden,
	})
}
