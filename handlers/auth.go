package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/middleware"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// LoginRequest is the body of POST /api/auth/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeResponse describes the current actor
type MeResponse struct {
	Profile *models.Profile `json:"profile"`
	Firm    *models.Firm    `json:"firm,omitempty"`
}

func sessionDuration(c echo.Context) time.Duration {
	days := 7
	if cfg, ok := c.Get("config").(*config.Config); ok && cfg.SessionDays > 0 {
		days = cfg.SessionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// LoginHandler checks credentials and starts a session
// POST /api/auth/login
func LoginHandler(c echo.Context) error {
	var req LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Email and password are required")
	}

	session, profile, err := services.Login(
		c.Request().Context(), db.DB,
		email, req.Password,
		c.RealIP(), c.Request().UserAgent(),
		sessionDuration(c),
	)
	if err != nil {
		return toHTTPError(c, err)
	}

	middleware.SetSessionCookie(c, session.Token, session.ExpiresAt)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"profile":    profile,
		"onboarding": !profile.HasFirm(),
	})
}

// LogoutHandler ends the current session
// POST /api/auth/logout
func LogoutHandler(c echo.Context) error {
	if session := middleware.GetSession(c); session != nil {
		if err := services.Logout(c.Request().Context(), db.DB, session.Token); err != nil {
			return toHTTPError(c, err)
		}
	}
	middleware.ClearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// MeHandler returns the current profile and its firm
// GET /api/auth/me
func MeHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	var profile models.Profile
	if err := db.DB.WithContext(ctx).Where("id = ?", t.ProfileID).First(&profile).Error; err != nil {
		return toHTTPError(c, services.ErrNotAuthenticated)
	}
	firm, err := services.GetFirm(ctx, t)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, MeResponse{Profile: &profile, Firm: firm})
}

// OnboardingHandler creates the firm of a profile that has none
// POST /api/onboarding/firm
func OnboardingHandler(c echo.Context) error {
	session := middleware.GetSession(c)
	if session == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var in services.FirmInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	firm, err := services.CreateFirmForProfile(c.Request().Context(), db.DB, session.ProfileID, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, firm)
}
