package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string `json:"token"`
	MemberID    string `json:"member_id"`
	HouseholdID string `json:"household_id"`
	Role        string `json:"role"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	token, identity, err := s.authSvc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	return c.JSON(http.StatusOK, loginResponse{
		Token:       token,
		MemberID:    identity.MemberID.String(),
		HouseholdID: identity.HouseholdID.String(),
		Role:        identity.Role,
	})
}
