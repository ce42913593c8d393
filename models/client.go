package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client type constants
const (
	ClientTypeIndividual = "individual"
	ClientTypeCompany    = "company"
)

// Client is a person or organization the firm represents. For companies
// FullName holds the contact person.
type Client struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID string `gorm:"type:uuid;not null;index:idx_client_firm_type" json:"firm_id"`

	Type        string  `gorm:"not null;default:individual;index:idx_client_firm_type" json:"type"`
	FullName    string  `json:"full_name"`
	CompanyName *string `json:"company_name,omitempty"`
	Email       string  `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"`
	Address     string  `gorm:"type:text" json:"address,omitempty"`
	TaxID       string  `json:"tax_id,omitempty"`
	Notes       string  `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID *string  `gorm:"type:uuid" json:"created_by_id,omitempty"`
	CreatedBy   *Profile `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// DisplayName is the company name for companies and the full name otherwise
func (c *Client) DisplayName() string {
	if c.Type == ClientTypeCompany && c.CompanyName != nil && *c.CompanyName != "" {
		return *c.CompanyName
	}
	return c.FullName
}

// IsValidClientType checks if the client type is valid
func IsValidClientType(t string) bool {
	return t == ClientTypeIndividual || t == ClientTypeCompany
}

// TableName specifies the table name for Client model
func (Client) TableName() string {
	return "clients"
}
