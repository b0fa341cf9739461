package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/core/domain/household"
	"github.com/homewarden/homewarden/internal/core/domain/member"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

type createHouseholdRequest struct {
	Name          string `json:"name"`
	Slug          string `json:"slug"`
	OwnerEmail    string `json:"owner_email"`
	OwnerName     string `json:"owner_name"`
	OwnerPassword string `json:"owner_password"`
}

type createHouseholdResponse struct {
	Household *household.Household `json:"household"`
	Owner     *member.Member       `json:"owner"`
}

// createHousehold is self-service signup: the household and its owner member
// are created together.
func (s *Server) createHousehold(c echo.Context) error {
	var req createHouseholdRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h, err := s.householdSvc.Create(c.Request().Context(), req.Name, req.Slug)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	owner, err := s.memberSvc.Add(c.Request().Context(), h.ID, ports.CreateMemberInput{
		Email:       req.OwnerEmail,
		DisplayName: req.OwnerName,
		Password:    req.OwnerPassword,
		Role:        member.RoleOwner,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	return c.JSON(http.StatusCreated, createHouseholdResponse{Household: h, Owner: owner})
}

func (s *Server) getOwnHousehold(c echo.Context) error {
	householdID, err := helpers.GetHouseholdIDFromContext(c)
	if err != nil {
		return err
	}
	h, err := s.householdSvc.Get(c.Request().Context(), householdID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "household not found")
	}
	return c.JSON(http.StatusOK, h)
}

type updateSettingsRequest struct {
	RequestsPerMinute int    `json:"requests_per_minute"`
	Timezone          string `json:"timezone"`
}

func (s *Server) updateHouseholdSettings(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}
	if !member.Role(identity.Role).CanManageMembers() {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}

	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h, err := s.householdSvc.UpdateSettings(c.Request().Context(), identity.HouseholdID, household.Settings{
		RequestsPerMinute: req.RequestsPerMinute,
		Timezone:          req.Timezone,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h)
}

type setStatusRequest struct {
	Status household.Status `json:"status"`
}

func (s *Server) setHouseholdStatus(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}
	if member.Role(identity.Role) != member.RoleOwner {
		return echo.NewHTTPError(http.StatusForbidden, "only the owner may change household status")
	}

	var req setStatusRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	h, err := s.householdSvc.SetStatus(c.Request().Context(), identity.HouseholdID, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, h)
}
