package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Document type constants
const (
	DocumentTypeContract       = "contract"
	DocumentTypeEvidence       = "evidence"
	DocumentTypeCorrespondence = "correspondence"
	DocumentTypeTemplate       = "template"
	DocumentTypeOther          = "other"
)

// Document is the metadata record for a file kept in the blob store.
// Version starts at 1 and only moves when the content is replaced.
type Document struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID string `gorm:"type:uuid;not null;index:idx_document_firm_type" json:"firm_id"`

	Name        string `gorm:"not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Type        string `gorm:"not null;default:other;index:idx_document_firm_type" json:"type"`
	IsTemplate  bool   `gorm:"not null;default:false" json:"is_template"`

	CaseID *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ClientID *string `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	// Content reference
	FileURL  string `json:"file_url,omitempty"`
	FileKey  string `json:"-"` // Blob store key; not exposed
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type,omitempty"`
	Version  int    `gorm:"not null;default:1" json:"version"`

	UploadedByID *string  `gorm:"type:uuid" json:"uploaded_by_id,omitempty"`
	UploadedBy   *Profile `gorm:"foreignKey:UploadedByID" json:"uploaded_by,omitempty"`
}

// BeforeCreate hook to generate UUID and start the version at 1
func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	if d.Version < 1 {
		d.Version = 1
	}
	return nil
}

// TableName specifies the table name for Document model
func (Document) TableName() string {
	return "documents"
}

// HasContent checks if a file has been attached
func (d *Document) HasContent() bool {
	return d.FileURL != "" || d.FileKey != ""
}

// IsValidDocumentType checks if the document type is valid
func IsValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeContract, DocumentTypeEvidence, DocumentTypeCorrespondence,
		DocumentTypeTemplate, DocumentTypeOther:
		return true
	}
	return false
}
