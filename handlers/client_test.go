package handlers

import (
	"net/http"
	"testing"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientHandlers(t *testing.T) {
	setupTestDB(t)
	firmA := createTenant(t, "Firm A")
	firmB := createTenant(t, "Firm B")

	var created models.Client

	t.Run("Create", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/clients", jsonBody(t, map[string]interface{}{
			"type":         "company",
			"company_name": "Acme SA",
			"email":        "Legal@Acme.example",
		}))
		withTenant(c, firmA)

		require.NoError(t, CreateClientHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		decode(t, rec, &created)
		assert.Equal(t, firmA.FirmID, created.FirmID)
		assert.Equal(t, "legal@acme.example", created.Email)
	})

	t.Run("CompanyWithoutName", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/api/clients", jsonBody(t, map[string]interface{}{
			"type":         "company",
			"company_name": "  ",
		}))
		withTenant(c, firmA)

		he := httpError(t, CreateClientHandler(c))
		assert.Equal(t, http.StatusBadRequest, he.Code)
		assert.Equal(t, "company_name", he.Message.(map[string]string)["field"])
	})

	t.Run("MalformedBody", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/api/clients", jsonBody(t, []int{1, 2}))
		withTenant(c, firmA)

		he := httpError(t, CreateClientHandler(c))
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("Get", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/clients/"+created.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		withTenant(c, firmA)

		require.NoError(t, GetClientHandler(c))
		var detail services.ClientDetail
		decode(t, rec, &detail)
		assert.Equal(t, created.ID, detail.ID)
		assert.Equal(t, int64(0), detail.CaseCount)
	})

	t.Run("OtherFirmGets404", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/clients/"+created.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		withTenant(c, firmB)

		he := httpError(t, GetClientHandler(c))
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("ListIsScoped", func(t *testing.T) {
		createClient(t, firmB, "Someone Else")

		_, c, rec := setupEcho(http.MethodGet, "/api/clients?q=acme", nil)
		withTenant(c, firmA)

		require.NoError(t, ListClientsHandler(c))
		var clients []models.Client
		decode(t, rec, &clients)
		require.Len(t, clients, 1)
		assert.Equal(t, created.ID, clients[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodDelete, "/api/clients/"+created.ID, nil)
		c.SetParamNames("id")
		c.SetParamValues(created.ID)
		withTenant(c, firmA)

		require.NoError(t, DeleteClientHandler(c))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("NoTenant", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/clients", nil)
		he := httpError(t, ListClientsHandler(c))
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})
}
