package handlers

import (
	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/middleware"
	"github.com/NightSight1044/legalCRM1/models"

	"github.com/labstack/echo/v4"
)

// ConfigMiddleware makes cfg available to handlers as c.Get("config")
func ConfigMiddleware(cfg *config.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	}
}

// RegisterRoutes mounts the JSON API under /api
func RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.Use(middleware.APILimiter.Middleware())

	// Public routes
	api.POST("/auth/login", LoginHandler, middleware.LoginLimiter.Middleware())

	// Authenticated but no firm required
	onboarding := api.Group("/onboarding")
	onboarding.Use(middleware.RequireSession(), middleware.ProfileLimiter.Middleware())
	{
		onboarding.POST("/firm", OnboardingHandler)
		onboarding.POST("/logout", LogoutHandler)
	}

	// Authentication + firm required
	protected := api.Group("")
	protected.Use(middleware.RequireAuth(), middleware.ProfileLimiter.Middleware())
	{
		protected.POST("/auth/logout", LogoutHandler)
		protected.GET("/auth/me", MeHandler)

		protected.GET("/firm", GetFirmHandler)
		protected.GET("/firm/members", ListMembersHandler)

		protected.GET("/dashboard", DashboardHandler)
		protected.GET("/search", SearchHandler)

		protected.GET("/clients", ListClientsHandler)
		protected.POST("/clients", CreateClientHandler)
		protected.GET("/clients/import/template", ClientImportTemplateHandler)
		protected.POST("/clients/import", ImportClientsHandler, middleware.ImportLimiter.Middleware())
		protected.GET("/clients/:id", GetClientHandler)
		protected.PUT("/clients/:id", UpdateClientHandler)
		protected.DELETE("/clients/:id", DeleteClientHandler)

		protected.GET("/cases", ListCasesHandler)
		protected.POST("/cases", CreateCaseHandler)
		protected.GET("/cases/duplicates", DuplicateCaseNumbersHandler)
		protected.GET("/cases/:id", GetCaseHandler)
		protected.PUT("/cases/:id", UpdateCaseHandler)
		protected.GET("/cases/:id/stats", GetCaseStatisticsHandler)
		protected.GET("/cases/:id/time-entries", ListCaseTimeEntriesHandler)
		protected.POST("/cases/:id/invoices/draft", DraftInvoiceHandler)

		protected.GET("/time-entries", ListTimeEntriesHandler)
		protected.POST("/time-entries", CreateTimeEntryHandler)
		protected.GET("/time-entries/:id", GetTimeEntryHandler)
		protected.PUT("/time-entries/:id", UpdateTimeEntryHandler)
		protected.DELETE("/time-entries/:id", DeleteTimeEntryHandler)

		protected.GET("/calendar/events", ListEventsHandler)
		protected.POST("/calendar/events", CreateEventHandler)
		protected.GET("/calendar/events/:id", GetEventHandler)
		protected.PUT("/calendar/events/:id", UpdateEventHandler)
		protected.DELETE("/calendar/events/:id", DeleteEventHandler)
		protected.GET("/calendar/events/:id/ics", EventICSHandler)
		protected.GET("/calendar/summary", CalendarSummaryHandler)
		protected.GET("/calendar/reminder-text", DescribeReminderHandler)

		protected.GET("/documents", ListDocumentsHandler)
		protected.POST("/documents", CreateDocumentHandler)
		protected.GET("/documents/stats", DocumentStatsHandler)
		protected.GET("/documents/:id", GetDocumentHandler)
		protected.PUT("/documents/:id", UpdateDocumentHandler)
		protected.DELETE("/documents/:id", DeleteDocumentHandler)
		protected.GET("/documents/:id/content", DownloadDocumentHandler)
		protected.PUT("/documents/:id/content", UploadDocumentContentHandler)

		protected.GET("/invoices", ListInvoicesHandler)
		protected.POST("/invoices", CreateInvoiceHandler)
		protected.POST("/invoices/compute", ComputeTotalsHandler)
		protected.GET("/invoices/:id", GetInvoiceHandler)
		protected.PUT("/invoices/:id", UpdateInvoiceHandler)
		protected.PATCH("/invoices/:id/status", SetInvoiceStatusHandler)
		protected.DELETE("/invoices/:id", DeleteInvoiceHandler)

		protected.GET("/reports/time-entries.xlsx", ExportTimeEntriesHandler)
		protected.GET("/reports/invoices.xlsx", ExportInvoicesHandler)
		protected.GET("/reports/billing-summary", BillingSummaryHandler)

		// Admin-only routes
		admin := protected.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.PUT("/firm", UpdateFirmHandler)
			admin.POST("/firm/members", CreateMemberHandler)
			admin.PATCH("/firm/members/:id", SetMemberActiveHandler)
			admin.GET("/audit-logs", GetAuditLogsHandler)
			admin.GET("/audit-logs/:resource_type/:resource_id", GetResourceHistoryHandler)
		}
	}
}
