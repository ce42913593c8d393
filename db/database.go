package db

import (
	"fmt"
	"net/url"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/models"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Initialize opens the database. A Turso URL takes precedence over the
// local SQLite file, which runs in WAL mode.
func Initialize(cfg *config.Config) error {
	var err error

	logLevel := logger.Info
	if cfg.IsProduction() {
		logLevel = logger.Warn
	}
	// Timestamps are written in UTC; sqlite compares them as text
	gormCfg := &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	if cfg.TursoDatabaseURL != "" {
		DB, err = gorm.Open(sqlite.New(sqlite.Config{
			DriverName: "libsql",
			DSN:        TursoDSN(cfg.TursoDatabaseURL, cfg.TursoAuthToken),
		}), gormCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to turso database: %w", err)
		}
		zap.L().Info("database connection established", zap.String("driver", "libsql"))
		return nil
	}

	DB, err = gorm.Open(sqlite.Open(cfg.DBPath+"?_journal_mode=WAL"), gormCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	zap.L().Info("database connection established", zap.String("driver", "sqlite"), zap.String("path", cfg.DBPath))
	return nil
}

// TursoDSN appends the auth token to a libsql URL
func TursoDSN(databaseURL, authToken string) string {
	if authToken == "" {
		return databaseURL
	}
	u, err := url.Parse(databaseURL)
	if err != nil {
		return databaseURL + "?authToken=" + url.QueryEscape(authToken)
	}
	q := u.Query()
	q.Set("authToken", authToken)
	u.RawQuery = q.Encode()
	return u.String()
}

// Models lists every table the application owns, in dependency order
func Models() []interface{} {
	return []interface{}{
		&models.Firm{},
		&models.Profile{},
		&models.Session{},
		&models.Client{},
		&models.Case{},
		&models.TimeEntry{},
		&models.CalendarEvent{},
		&models.Document{},
		&models.Invoice{},
		&models.InvoiceLineItem{},
		&models.NumberSequence{},
		&models.AuditLog{},
	}
}

// AutoMigrate runs database migrations for all application models
func AutoMigrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if err := DB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	zap.L().Info("database migrations completed")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	return sqlDB.Close()
}
