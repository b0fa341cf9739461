package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/core/domain/member"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

func (s *Server) listMembers(c echo.Context) error {
	householdID, err := helpers.GetHouseholdIDFromContext(c)
	if err != nil {
		return err
	}
	members, err := s.memberSvc.List(c.Request().Context(), householdID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, members)
}

type addMemberRequest struct {
	Email       string      `json:"email"`
	DisplayName string      `json:"display_name"`
	Password    string      `json:"password"`
	Role        member.Role `json:"role"`
}

func (s *Server) addMember(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}
	if !member.Role(identity.Role).CanManageMembers() {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}

	var req addMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Role == member.RoleOwner {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot add another owner")
	}

	m, err := s.memberSvc.Add(c.Request().Context(), identity.HouseholdID, ports.CreateMemberInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, m)
}

func (s *Server) removeMember(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}
	if !member.Role(identity.Role).CanManageMembers() {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}

	memberID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid member ID")
	}

	if err := s.memberSvc.Remove(c.Request().Context(), identity.HouseholdID, memberID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
