package handlers

import (
	"net/http"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// GetFirmHandler returns the current firm
// GET /api/firm
func GetFirmHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	firm, err := services.GetFirm(c.Request().Context(), t)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, firm)
}

// UpdateFirmHandler edits the firm settings (admin only)
// PUT /api/firm
func UpdateFirmHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.FirmInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	firm, err := services.UpdateFirm(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, firm)
}

// ListMembersHandler lists the firm's profiles
// GET /api/firm/members
func ListMembersHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	members, err := services.ListMembers(c.Request().Context(), t)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, members)
}

// CreateMemberHandler adds a profile to the firm (admin only)
// POST /api/firm/members
func CreateMemberHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.ProfileInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	member, err := services.AddMember(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, member)
}

// SetMemberActiveHandler enables or disables a member (admin only)
// PATCH /api/firm/members/:id
func SetMemberActiveHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "is_active is required")
	}
	if err := services.SetMemberActive(c.Request().Context(), t, c.Param("id"), *req.IsActive); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
