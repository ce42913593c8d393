package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile role constants
const (
	RoleAdmin  = "admin"
	RoleLawyer = "lawyer"
	RoleStaff  = "staff"
)

// Profile is a person working inside a firm. A profile without a firm is
// still onboarding and cannot touch tenant data.
type Profile struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FullName     string     `gorm:"not null" json:"full_name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	FirmID       *string    `gorm:"type:uuid;index" json:"firm_id"` // Nullable until onboarding completes
	Role         string     `gorm:"not null;default:staff" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`

	Firm *Firm `gorm:"foreignKey:FirmID" json:"firm,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// HasFirm checks if the profile has a firm assigned
func (p *Profile) HasFirm() bool {
	return p.FirmID != nil && *p.FirmID != ""
}

// IsValidRole checks if the role is valid
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleLawyer, RoleStaff:
		return true
	}
	return false
}

// TableName specifies the table name for Profile model
func (Profile) TableName() string {
	return "profiles"
}
