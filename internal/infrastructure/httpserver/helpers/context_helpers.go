package helpers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/core/domain/admission"
	"github.com/homewarden/homewarden/internal/core/ports"
)

func GetIdentityFromContext(c echo.Context) (*ports.Identity, error) {
	id, ok := GetIdentityRaw(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid identity context")
	}
	return id, nil
}

func GetMemberIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := GetMemberIDRaw(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid member context")
	}
	return id, nil
}

func GetHouseholdIDFromContext(c echo.Context) (uuid.UUID, error) {
	id, ok := GetHouseholdIDRaw(c)
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid household context")
	}
	return id, nil
}

func GetBearerTokenFromContext(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "empty token")
	}
	return token, nil
}

// ClientKey resolves the rate-limit identifier for the request, caching it on
// the context. Priority: authenticated member, then the trusted
// CF-Connecting-IP header, then the first X-Forwarded-For hop, then the
// transport remote address.
func ClientKey(c echo.Context) string {
	if key, ok := GetClientKeyRaw(c); ok {
		return key
	}
	principal := ""
	if id, ok := GetMemberIDRaw(c); ok {
		principal = id.String()
	}
	req := c.Request()
	remote := req.RemoteAddr
	if i := strings.LastIndexByte(remote, ':'); i > 0 {
		remote = remote[:i]
	}
	key := admission.ResolveIdentifier(
		principal,
		req.Header.Get("CF-Connecting-IP"),
		req.Header.Get("X-Forwarded-For"),
		remote,
	)
	SetClientKey(c, key)
	return key
}
