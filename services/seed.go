package services

import (
	"context"
	"os"

	"github.com/NightSight1044/legalCRM1/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SeedFirmFromEnv creates a firm and its admin from environment variables.
// It only runs when SEED_FIRM_NAME, SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD
// are set and the admin email is not registered yet.
func SeedFirmFromEnv(ctx context.Context, db *gorm.DB) error {
	firmName := os.Getenv("SEED_FIRM_NAME")
	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if firmName == "" || email == "" || password == "" {
		return nil
	}

	name := os.Getenv("SEED_ADMIN_NAME")
	if name == "" {
		name = "Administrator"
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		zap.L().Info("seed admin already exists, skipping", zap.String("email", email))
		return nil
	}

	_, _, err := CreateFirmWithAdmin(ctx, db,
		FirmInput{Name: firmName, Timezone: os.Getenv("SEED_FIRM_TIMEZONE")},
		ProfileInput{FullName: name, Email: email, Password: password},
	)
	return err
}
