package handlers

import (
	"net/http"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// ListClientsHandler lists the firm's clients
// GET /api/clients?type=company&q=acme
func ListClientsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	clients, err := services.ListClients(c.Request().Context(), t, services.ClientFilters{
		Type:    c.QueryParam("type"),
		Keyword: c.QueryParam("q"),
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, clients)
}

// CreateClientHandler registers a client
// POST /api/clients
func CreateClientHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.ClientInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	client, err := services.CreateClient(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, client)
}

// GetClientHandler returns a client with its case count
// GET /api/clients/:id
func GetClientHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	client, err := services.GetClient(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// UpdateClientHandler replaces a client's editable fields
// PUT /api/clients/:id
func UpdateClientHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.ClientInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	client, err := services.UpdateClient(c.Request().Context(), t, c.Param("id"), in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, client)
}

// DeleteClientHandler removes a client without cases
// DELETE /api/clients/:id
func DeleteClientHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	if err := services.DeleteClient(c.Request().Context(), t, c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
