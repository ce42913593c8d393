package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, testDB.AutoMigrate(db.Models()...))

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "success")
}

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected *echo.HTTPError, got %T", err)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()
	ctx := t.Context()

	firm := models.Firm{Name: "Test Firm"}
	require.NoError(t, testDB.Create(&firm).Error)

	profile := models.Profile{
		FullName:     "Test User",
		Email:        "test@example.com",
		PasswordHash: "x",
		FirmID:       &firm.ID,
		IsActive:     true,
		Role:         models.RoleAdmin,
	}
	require.NoError(t, testDB.Create(&profile).Error)

	session, err := services.CreateSession(ctx, testDB, profile.ID, "127.0.0.1", "test-agent", time.Hour)
	require.NoError(t, err)

	t.Run("ValidCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, RequireAuth()(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		tenant := GetTenant(c)
		require.NotNil(t, tenant)
		assert.Equal(t, firm.ID, tenant.FirmID)
		assert.Equal(t, profile.ID, tenant.ProfileID)
		assert.Equal(t, session.ID, GetSession(c).ID)
	})

	t.Run("BearerToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+session.Token)
		c := e.NewContext(req, httptest.NewRecorder())

		assert.NoError(t, RequireAuth()(okHandler)(c))
		assert.NotNil(t, GetTenant(c))
	})

	t.Run("NoToken", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/api/clients", nil), httptest.NewRecorder())
		err := RequireAuth()(okHandler)(c)
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
	})

	t.Run("InvalidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "invalid-token"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(okHandler)(c)
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookieName+"=;")
	})

	t.Run("ProfileWithoutFirm", func(t *testing.T) {
		onboarding := models.Profile{FullName: "New", Email: "new@example.com", PasswordHash: "x", Role: models.RoleStaff}
		require.NoError(t, testDB.Create(&onboarding).Error)
		s, err := services.CreateSession(ctx, testDB, onboarding.ID, "", "", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: s.Token})
		err = RequireAuth()(okHandler)(e.NewContext(req, httptest.NewRecorder()))
		assert.Equal(t, http.StatusConflict, httpCode(t, err))

		c := e.NewContext(req, httptest.NewRecorder())
		require.NoError(t, RequireSession()(okHandler)(c))
		assert.Equal(t, onboarding.ID, GetSession(c).ProfileID)
		assert.Nil(t, GetTenant(c))
	})

	t.Run("InactiveProfile", func(t *testing.T) {
		inactive := models.Profile{FullName: "Gone", Email: "gone@example.com", PasswordHash: "x", FirmID: &firm.ID, Role: models.RoleStaff}
		require.NoError(t, testDB.Create(&inactive).Error)
		// Force IsActive to false because GORM default:true overrides the zero value on create
		require.NoError(t, testDB.Model(&inactive).Update("is_active", false).Error)
		s, err := services.CreateSession(ctx, testDB, inactive.ID, "", "", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/clients", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: s.Token})
		err = RequireAuth()(okHandler)(e.NewContext(req, httptest.NewRecorder()))
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
	})
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	t.Run("HasRole", func(t *testing.T) {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		c.Set(ContextKeyTenant, &services.Tenant{FirmID: "f", Role: models.RoleAdmin})

		assert.NoError(t, RequireRole(models.RoleAdmin, models.RoleLawyer)(okHandler)(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("MissingRole", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		c.Set(ContextKeyTenant, &services.Tenant{FirmID: "f", Role: models.RoleStaff})

		err := RequireAdmin()(okHandler)(c)
		assert.Equal(t, http.StatusForbidden, httpCode(t, err))
	})

	t.Run("NoTenant", func(t *testing.T) {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
		err := RequireRole(models.RoleAdmin)(okHandler)(c)
		assert.Equal(t, http.StatusUnauthorized, httpCode(t, err))
	})
}

func TestRequestLogger(t *testing.T) {
	e := echo.New()
	e.Use(RequestLogger())
	e.GET("/ping", okHandler)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
