package handlers

import (
	"net/http"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// CaseListResponse is one page of cases
type CaseListResponse struct {
	Cases    []models.Case `json:"cases"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

// ListCasesHandler lists the firm's cases
// GET /api/cases?status=active&priority=high&client_id=...&lawyer_id=...&q=...&page=1&page_size=20
func ListCasesHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	filters := services.CaseFilters{
		Status:           c.QueryParam("status"),
		Priority:         c.QueryParam("priority"),
		ClientID:         c.QueryParam("client_id"),
		AssignedLawyerID: c.QueryParam("lawyer_id"),
		Keyword:          c.QueryParam("q"),
		Page:             intParam(c, "page", 1),
		PageSize:         intParam(c, "page_size", 20),
	}
	cases, total, err := services.ListCases(c.Request().Context(), t, filters)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, CaseListResponse{
		Cases:    cases,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	})
}

// CreateCaseHandler opens a case. Duplicate case numbers come back in the
// warnings field.
// POST /api/cases
func CreateCaseHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.CaseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	created, err := services.CreateCase(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

// GetCaseHandler returns a case
// GET /api/cases/:id
func GetCaseHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	found, err := services.GetCase(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, found)
}

// UpdateCaseHandler replaces a case's editable fields
// PUT /api/cases/:id
func UpdateCaseHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.CaseInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	updated, err := services.UpdateCase(c.Request().Context(), t, c.Param("id"), in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// GetCaseStatisticsHandler returns a case with its counters and revenue basis
// GET /api/cases/:id/stats
func GetCaseStatisticsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	stats, err := services.GetCaseWithStatistics(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// ListCaseTimeEntriesHandler lists a case's time entries
// GET /api/cases/:id/time-entries
func ListCaseTimeEntriesHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	entries, err := services.ListTimeEntriesByCase(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// DuplicateCaseNumbersHandler lists case numbers shared by several cases
// GET /api/cases/duplicates
func DuplicateCaseNumbersHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	numbers, err := services.DuplicateCaseNumbers(c.Request().Context(), t)
	if err != nil {
		return toHTTPError(c, err)
	}
	if numbers == nil {
		numbers = []string{}
	}
	return c.JSON(http.StatusOK, map[string][]string{"case_numbers": numbers})
}
