package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10
	// SessionTokenLength is the length of the session token in bytes (64 chars hex)
	SessionTokenLength = 32
	// DefaultSessionDuration is the default session duration (7 days)
	DefaultSessionDuration = 7 * 24 * time.Hour
	// MinPasswordLength is the shortest accepted password
	MinPasswordLength = 12
)

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// VerifyPassword verifies a password against a bcrypt hash
func VerifyPassword(hashedPassword, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password)) == nil
}

// ValidatePassword checks length and character classes: upper, lower,
// digit and symbol are all required
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return NewValidationError("password", fmt.Sprintf("must be at least %d characters long", MinPasswordLength))
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		case unicode.IsPunct(char) || unicode.IsSymbol(char):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return NewValidationError("password", "must contain at least one uppercase letter")
	case !hasLower:
		return NewValidationError("password", "must contain at least one lowercase letter")
	case !hasNumber:
		return NewValidationError("password", "must contain at least one number")
	case !hasSpecial:
		return NewValidationError("password", "must contain at least one special character")
	}
	return nil
}

// GenerateSessionToken generates a cryptographically secure random token
func GenerateSessionToken() (string, error) {
	bytes := make([]byte, SessionTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// CreateSession opens a session for a profile
func CreateSession(ctx context.Context, db *gorm.DB, profileID, ipAddress, userAgent string, duration time.Duration) (*models.Session, error) {
	token, err := GenerateSessionToken()
	if err != nil {
		return nil, err
	}
	if duration <= 0 {
		duration = DefaultSessionDuration
	}

	session := &models.Session{
		ID:        uuid.New().String(),
		ProfileID: profileID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(duration),
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
	if err := db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession returns the live session for token. Expired sessions are
// deleted on sight.
func ValidateSession(ctx context.Context, db *gorm.DB, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}

	var session models.Session
	err := db.WithContext(ctx).Where("token = ?", token).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionExpired
	}
	if err != nil {
		return nil, fmt.Errorf("failed to validate session: %w", err)
	}

	if session.IsExpired() {
		db.WithContext(ctx).Delete(&session)
		return nil, ErrSessionExpired
	}
	return &session, nil
}

// DeleteSession deletes a session (logout)
func DeleteSession(ctx context.Context, db *gorm.DB, token string) error {
	if err := db.WithContext(ctx).Where("token = ?", token).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// CleanupExpiredSessions removes all expired sessions from the database
func CleanupExpiredSessions(ctx context.Context, db *gorm.DB) error {
	result := db.WithContext(ctx).Where("expires_at < ?", time.Now().UTC()).Delete(&models.Session{})
	if result.Error != nil {
		return fmt.Errorf("failed to cleanup expired sessions: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		zap.L().Info("cleaned up expired sessions", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

// Login checks credentials and opens a session. Unknown emails, wrong
// passwords and inactive profiles all return ErrInvalidCredentials.
func Login(ctx context.Context, db *gorm.DB, email, password, ipAddress, userAgent string, duration time.Duration) (*models.Session, *models.Profile, error) {
	var profile models.Profile
	err := db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logSecurityEvent("LOGIN_FAILED", "", "unknown email")
		return nil, nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if !profile.IsActive || !VerifyPassword(profile.PasswordHash, password) {
		logSecurityEvent("LOGIN_FAILED", profile.ID, "bad password or inactive profile")
		return nil, nil, ErrInvalidCredentials
	}

	session, err := CreateSession(ctx, db, profile.ID, ipAddress, userAgent, duration)
	if err != nil {
		return nil, nil, err
	}

	now := time.Now()
	profile.LastLoginAt = &now
	if err := db.WithContext(ctx).Model(&profile).Update("last_login_at", now).Error; err != nil {
		zap.L().Warn("failed to record last login", zap.String("profile_id", profile.ID), zap.Error(err))
	}
	recordSessionEvent(ctx, db, &profile, models.AuditActionLogin)
	return session, &profile, nil
}

// Logout closes the session behind token
func Logout(ctx context.Context, db *gorm.DB, token string) error {
	session, err := ValidateSession(ctx, db, token)
	if errors.Is(err, ErrSessionExpired) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := DeleteSession(ctx, db, token); err != nil {
		return err
	}

	var profile models.Profile
	if err := db.WithContext(ctx).First(&profile, "id = ?", session.ProfileID).Error; err == nil {
		recordSessionEvent(ctx, db, &profile, models.AuditActionLogout)
	}
	return nil
}

// recordSessionEvent audits logins and logouts of profiles that belong to a firm
func recordSessionEvent(ctx context.Context, db *gorm.DB, profile *models.Profile, action models.AuditAction) {
	if !profile.HasFirm() {
		return
	}
	snapshot, _ := json.Marshal(map[string]string{"email": profile.Email})
	entry := models.AuditLog{
		ProfileID:    &profile.ID,
		Role:         profile.Role,
		FirmID:       *profile.FirmID,
		ResourceType: models.Profile{}.TableName(),
		ResourceID:   profile.ID,
		Action:       action,
		NewValues:    string(snapshot),
	}
	if err := db.WithContext(ctx).Create(&entry).Error; err != nil {
		zap.L().Warn("failed to audit session event", zap.String("action", string(action)), zap.Error(err))
	}
}

// ProfileInput describes a new member of a firm
type ProfileInput struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=admin lawyer staff"`
}

// FirmInput describes a new firm
type FirmInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	Country      string `json:"country" validate:"max=100"`
	Timezone     string `json:"timezone" validate:"omitempty,timezone"`
	BillingEmail string `json:"billing_email" validate:"omitempty,email"`
}

// CreateProfile adds a member to firmID. An empty firmID leaves the
// profile in onboarding.
func CreateProfile(ctx context.Context, db *gorm.DB, firmID string, in ProfileInput) (*models.Profile, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	var taken int64
	if err := db.WithContext(ctx).Model(&models.Profile{}).Where("email = ?", in.Email).Count(&taken).Error; err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken > 0 {
		return nil, NewValidationError("email", "is already registered")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	profile := &models.Profile{
		FullName:     in.FullName,
		Email:        in.Email,
		PasswordHash: hash,
		FirmID:       ptrIfNotEmpty(firmID),
		Role:         in.Role,
		IsActive:     true,
	}
	if profile.Role == "" {
		profile.Role = models.RoleStaff
	}
	if err := db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return profile, nil
}

// CreateFirmWithAdmin creates a firm and its first admin in one transaction
func CreateFirmWithAdmin(ctx context.Context, db *gorm.DB, firmIn FirmInput, adminIn ProfileInput) (*models.Firm, *models.Profile, error) {
	firmIn.Name = strings.TrimSpace(firmIn.Name)
	if err := validateInput(firmIn); err != nil {
		return nil, nil, err
	}

	var firm *models.Firm
	var admin *models.Profile
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		firm = &models.Firm{
			Name:         firmIn.Name,
			Country:      firmIn.Country,
			Timezone:     firmIn.Timezone,
			BillingEmail: strings.ToLower(strings.TrimSpace(firmIn.BillingEmail)),
		}
		if firm.Timezone == "" {
			firm.Timezone = "UTC"
		}
		if err := tx.Create(firm).Error; err != nil {
			return fmt.Errorf("failed to create firm: %w", err)
		}

		adminIn.Role = models.RoleAdmin
		var err error
		admin, err = CreateProfile(ctx, tx, firm.ID, adminIn)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("firm created", zap.String("firm_id", firm.ID), zap.String("slug", firm.Slug), zap.String("admin_id", admin.ID))
	return firm, admin, nil
}

// AttachProfileToFirm completes onboarding for a profile without a firm
func AttachProfileToFirm(ctx context.Context, db *gorm.DB, profileID, firmID, role string) error {
	if !models.IsValidRole(role) {
		return NewValidationError("role", "must be one of: admin lawyer staff")
	}
	res := db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND (firm_id IS NULL OR firm_id = '')", profileID).
		Updates(map[string]interface{}{"firm_id": firmID, "role": role})
	if res.Error != nil {
		return fmt.Errorf("failed to attach profile: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func logSecurityEvent(eventType, profileID, details string) {
	zap.L().Warn("security event",
		zap.String("event", eventType),
		zap.String("profile_id", profileID),
		zap.String("details", details),
	)
}
