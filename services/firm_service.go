package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NightSight1044/legalCRM1/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetFirm returns the tenant's firm
func GetFirm(ctx context.Context, t *Tenant) (*models.Firm, error) {
	var firm models.Firm
	err := t.db.WithContext(ctx).Where("id = ?", t.FirmID).First(&firm).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load firm: %w", err)
	}
	return &firm, nil
}

// UpdateFirm edits the firm settings. The slug never changes.
func UpdateFirm(ctx context.Context, t *Tenant, in FirmInput) (*models.Firm, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	firm, err := GetFirm(ctx, t)
	if err != nil {
		return nil, err
	}
	firm.Name = in.Name
	firm.Country = strings.TrimSpace(in.Country)
	firm.BillingEmail = strings.ToLower(strings.TrimSpace(in.BillingEmail))
	if in.Timezone != "" {
		firm.Timezone = in.Timezone
	}

	err = t.db.WithContext(ctx).Model(firm).
		Select("Name", "Country", "Timezone", "BillingEmail").
		Updates(firm).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update firm: %w", err)
	}
	t.log.Info("firm settings updated", zap.String("timezone", firm.Timezone))
	return firm, nil
}

// ListMembers returns the profiles of the tenant's firm by name
func ListMembers(ctx context.Context, t *Tenant) ([]models.Profile, error) {
	var profiles []models.Profile
	err := t.db.WithContext(ctx).
		Where("firm_id = ?", t.FirmID).
		Order("full_name ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return profiles, nil
}

// AddMember creates a profile inside the tenant's firm
func AddMember(ctx context.Context, t *Tenant, in ProfileInput) (*models.Profile, error) {
	profile, err := CreateProfile(ctx, t.db, t.FirmID, in)
	if err != nil {
		return nil, err
	}
	t.log.Info("member added", zap.String("member_id", profile.ID), zap.String("role", profile.Role))
	return profile, nil
}

// SetMemberActive enables or disables a member. Nobody can disable themselves.
func SetMemberActive(ctx context.Context, t *Tenant, profileID string, active bool) error {
	if !active && profileID == t.ProfileID {
		return NewValidationError("id", "you cannot deactivate your own profile")
	}
	res := t.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND firm_id = ?", profileID, t.FirmID).
		Update("is_active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to update member: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if !active {
		// Drop live sessions so the change takes effect now
		if err := t.db.WithContext(ctx).Where("profile_id = ?", profileID).Delete(&models.Session{}).Error; err != nil {
			return fmt.Errorf("failed to close sessions: %w", err)
		}
	}
	return nil
}

// CreateFirmForProfile finishes onboarding: it creates a firm and makes the
// profile its admin
func CreateFirmForProfile(ctx context.Context, db *gorm.DB, profileID string, in FirmInput) (*models.Firm, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	var firm *models.Firm
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.Where("id = ?", profileID).First(&profile).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load profile: %w", err)
		}
		if profile.HasFirm() {
			return NewValidationError("firm", "profile already belongs to a firm")
		}

		firm = &models.Firm{
			Name:         in.Name,
			Country:      strings.TrimSpace(in.Country),
			Timezone:     in.Timezone,
			BillingEmail: strings.ToLower(strings.TrimSpace(in.BillingEmail)),
		}
		if firm.Timezone == "" {
			firm.Timezone = "UTC"
		}
		if err := tx.Create(firm).Error; err != nil {
			return fmt.Errorf("failed to create firm: %w", err)
		}
		return AttachProfileToFirm(ctx, tx, profile.ID, firm.ID, models.RoleAdmin)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("firm created during onboarding", zap.String("firm_id", firm.ID), zap.String("profile_id", profileID))
	return firm, nil
}
