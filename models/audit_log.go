package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditAction represents the type of operation performed
type AuditAction string

const (
	AuditActionCreate         AuditAction = "CREATE"
	AuditActionUpdate         AuditAction = "UPDATE"
	AuditActionDelete         AuditAction = "DELETE"
	AuditActionContentReplace AuditAction = "CONTENT_REPLACE" // New document version uploaded
	AuditActionStatusChange   AuditAction = "STATUS_CHANGE"
	AuditActionLogin          AuditAction = "LOGIN"
	AuditActionLogout         AuditAction = "LOGOUT"
)

// AuditLog is an immutable record of a tenant mutation. It is written in
// the same transaction as the change it describes.
type AuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_audit_created_at" json:"created_at"`

	ProfileID *string `gorm:"type:uuid;index:idx_audit_profile" json:"profile_id,omitempty"`
	Role      string  `json:"role,omitempty"`

	FirmID string `gorm:"type:uuid;not null;index:idx_audit_firm" json:"firm_id"`

	ResourceType string `gorm:"not null;index:idx_audit_resource" json:"resource_type"` // e.g. "cases", "clients"
	ResourceID   string `gorm:"type:uuid;not null;index:idx_audit_resource" json:"resource_id"`

	Action    AuditAction `gorm:"not null;index:idx_audit_action" json:"action"`
	NewValues string      `gorm:"type:text" json:"new_values,omitempty"` // JSON encoded
}

// Snapshot decodes NewValues into a generic map
func (a *AuditLog) Snapshot() map[string]interface{} {
	values := make(map[string]interface{})
	if a.NewValues != "" {
		_ = json.Unmarshal([]byte(a.NewValues), &values)
	}
	return values
}

// BeforeCreate generates UUID
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit logs (immutability)
func (a *AuditLog) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// BeforeDelete prevents deletion of audit logs (immutability)
func (a *AuditLog) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// TableName specifies the table name
func (AuditLog) TableName() string {
	return "audit_logs"
}
