package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/core/ports"
)

type ctxKey string

const (
	keyIdentity  ctxKey = "identity"
	keyClientKey ctxKey = "client_key"
)

// SetIdentity stores the authenticated caller on the request context.
func SetIdentity(c echo.Context, id *ports.Identity) {
	c.Set(string(keyIdentity), id)
}

// GetIdentityRaw returns the stored identity, if any.
func GetIdentityRaw(c echo.Context) (*ports.Identity, bool) {
	id, ok := c.Get(string(keyIdentity)).(*ports.Identity)
	return id, ok && id != nil
}

// SetClientKey stores the resolved rate-limit identifier for the request.
func SetClientKey(c echo.Context, key string) {
	c.Set(string(keyClientKey), key)
}

// GetClientKeyRaw returns the resolved rate-limit identifier, if set.
func GetClientKeyRaw(c echo.Context) (string, bool) {
	key, ok := c.Get(string(keyClientKey)).(string)
	return key, ok && key != ""
}

// GetMemberIDRaw returns the authenticated member id, if any.
func GetMemberIDRaw(c echo.Context) (uuid.UUID, bool) {
	id, ok := GetIdentityRaw(c)
	if !ok {
		return uuid.Nil, false
	}
	return id.MemberID, true
}

// GetHouseholdIDRaw returns the authenticated household id, if any.
func GetHouseholdIDRaw(c echo.Context) (uuid.UUID, bool) {
	id, ok := GetIdentityRaw(c)
	if !ok {
		return uuid.Nil, false
	}
	return id.HouseholdID, true
}
