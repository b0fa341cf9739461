package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/homewarden/homewarden/internal/core/domain/member"
	"github.com/homewarden/homewarden/internal/core/domain/record"
	"github.com/homewarden/homewarden/internal/core/ports"
	"github.com/homewarden/homewarden/internal/infrastructure/httpserver/helpers"
)

func (s *Server) listRecords(c echo.Context) error {
	householdID, err := helpers.GetHouseholdIDFromContext(c)
	if err != nil {
		return err
	}

	recordType := record.Type(c.QueryParam("type"))
	if recordType != "" && !recordType.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record type")
	}
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 200 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be between 1 and 200")
		}
		limit = n
	}
	offset := 0
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid offset")
		}
		offset = n
	}

	records, err := s.recordSvc.List(c.Request().Context(), householdID, recordType, limit, offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, records)
}

type createRecordRequest struct {
	Type   record.Type     `json:"type"`
	Title  string          `json:"title"`
	Fields json.RawMessage `json:"fields"`
	Tags   []string        `json:"tags"`
}

func (s *Server) createRecord(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}
	if !member.Role(identity.Role).CanWriteRecords() {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	r, err := s.recordSvc.Create(c.Request().Context(), identity.HouseholdID, identity.MemberID, ports.CreateRecordInput{
		Type:   req.Type,
		Title:  req.Title,
		Fields: req.Fields,
		Tags:   req.Tags,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, r)
}

func (s *Server) getRecord(c echo.Context) error {
	householdID, err := helpers.GetHouseholdIDFromContext(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record ID")
	}

	r, err := s.recordSvc.Get(c.Request().Context(), householdID, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.JSON(http.StatusOK, r)
}

func (s *Server) deleteRecord(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}
	if !member.Role(identity.Role).CanWriteRecords() {
		return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record ID")
	}

	if err := s.recordSvc.Delete(c.Request().Context(), identity.HouseholdID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "record not found")
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getSuggestions(c echo.Context) error {
	identity, err := helpers.GetIdentityFromContext(c)
	if err != nil {
		return err
	}

	recordType := record.Type(c.QueryParam("type"))
	if !recordType.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid record type")
	}
	field := c.QueryParam("field")
	if field == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "field is required")
	}

	result, err := s.suggestionSvc.Suggest(c.Request().Context(), ports.SuggestQuery{
		HouseholdID:  identity.HouseholdID,
		ActorID:      identity.MemberID,
		RecordType:   recordType,
		Field:        field,
		CurrentValue: c.QueryParam("current"),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}
