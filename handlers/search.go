package handlers

import (
	"net/http"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// SearchHandler searches clients, cases and documents
// GET /api/search?q=keyword&limit=10
func SearchHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}

	limit := intParam(c, "limit", 10)
	if limit < 1 || limit > 50 {
		limit = 10
	}

	results, err := services.Search(c.Request().Context(), t, c.QueryParam("q"), limit)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}
