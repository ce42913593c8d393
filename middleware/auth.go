package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// SessionCookieName is the name of the session cookie
	SessionCookieName = "legalcrm_session"
	// ContextKeyTenant is the context key for the resolved tenant
	ContextKeyTenant = "tenant"
	// ContextKeySession is the context key for the session
	ContextKeySession = "session"
)

// RequireSession only checks the session token. Onboarding routes use it
// because the profile has no firm yet.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := loadSession(c)
			if err != nil {
				return err
			}
			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

// RequireAuth resolves the session token to a tenant. The token comes from
// the session cookie or an Authorization bearer header.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, err := loadSession(c)
			if err != nil {
				return err
			}

			tenant, err := services.ResolveTenant(c.Request().Context(), db.DB, session.ProfileID)
			switch {
			case errors.Is(err, services.ErrProfileNotFound):
				// Authenticated but still onboarding
				return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
					"message":    "Profile is not attached to a firm yet",
					"onboarding": true,
				})
			case errors.Is(err, services.ErrNotAuthenticated):
				ClearSessionCookie(c)
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			case err != nil:
				zap.L().Error("failed to resolve tenant", zap.String("profile_id", session.ProfileID), zap.Error(err))
				return echo.NewHTTPError(http.StatusInternalServerError, "Failed to resolve tenant")
			}

			c.Set(ContextKeyTenant, tenant)
			c.Set(ContextKeySession, session)
			return next(c)
		}
	}
}

func loadSession(c echo.Context) (*models.Session, error) {
	token := sessionToken(c)
	if token == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	session, err := services.ValidateSession(c.Request().Context(), db.DB, token)
	if err != nil {
		ClearSessionCookie(c)
		if errors.Is(err, services.ErrSessionExpired) {
			return nil, echo.NewHTTPError(http.StatusUnauthorized, "Session expired")
		}
		zap.L().Error("failed to validate session", zap.Error(err))
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "Failed to validate session")
	}
	return session, nil
}

// RequireRole is middleware that requires specific roles
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tenant := GetTenant(c)
			if tenant == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
			}

			for _, role := range roles {
				if tenant.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Insufficient permissions")
		}
	}
}

// RequireAdmin is RequireRole for firm administrators
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}

// GetTenant retrieves the resolved tenant from context
func GetTenant(c echo.Context) *services.Tenant {
	tenant, ok := c.Get(ContextKeyTenant).(*services.Tenant)
	if !ok {
		return nil
	}
	return tenant
}

// GetSession retrieves the current session from context
func GetSession(c echo.Context) *models.Session {
	session, ok := c.Get(ContextKeySession).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

func sessionToken(c echo.Context) string {
	if cookie, err := c.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func isProduction(c echo.Context) bool {
	cfg, ok := c.Get("config").(*config.Config)
	return ok && cfg.IsProduction()
}

// SetSessionCookie writes the session cookie
func SetSessionCookie(c echo.Context, token string, expires time.Time) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearSessionCookie clears the session cookie
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isProduction(c),
		SameSite: http.SameSiteLaxMode,
	})
}
