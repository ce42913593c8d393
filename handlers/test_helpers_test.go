package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/middleware"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testPassword = "Str0ng!Passw0rd"

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(db.Models()...))

	// Handlers read the globals
	db.DB = testDB
	services.Storage = services.NewLocalStorage(t.TempDir())
	return testDB
}

func testConfig() *config.Config {
	return &config.Config{Environment: "test", SessionDays: 7, EmailTestMode: true}
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", testConfig())

	return e, c, rec
}

// jsonBody encodes v for a request body
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dest), rec.Body.String())
}

// createTenant creates a firm with an admin and returns the admin's tenant
func createTenant(t *testing.T, name string) *services.Tenant {
	t.Helper()
	slug := strings.ToLower(strings.ReplaceAll(name, " ", "-"))
	firm, admin, err := services.CreateFirmWithAdmin(t.Context(), db.DB,
		services.FirmInput{Name: name, Timezone: "UTC"},
		services.ProfileInput{FullName: name + " Admin", Email: slug + "@example.com", Password: testPassword},
	)
	require.NoError(t, err)
	return services.NewTenant(db.DB, firm.ID, admin.ID, admin.Role)
}

func withTenant(c echo.Context, tn *services.Tenant) {
	c.Set(middleware.ContextKeyTenant, tn)
}

func createClient(t *testing.T, tn *services.Tenant, name string) *models.Client {
	t.Helper()
	client, err := services.CreateClient(t.Context(), tn, services.ClientInput{Type: models.ClientTypeIndividual, FullName: name})
	require.NoError(t, err)
	return client
}

// httpError unwraps the *echo.HTTPError a handler returned
func httpError(t *testing.T, err error) *echo.HTTPError {
	t.Helper()
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T: %v", err, err)
	return he
}
