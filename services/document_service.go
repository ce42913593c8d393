package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/NightSight1044/legalCRM1/metrics"
	"github.com/NightSight1044/legalCRM1/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentInput is the editable metadata of a document
type DocumentInput struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description string  `json:"description"`
	Type        string  `json:"type" validate:"omitempty,oneof=contract evidence correspondence template other"`
	IsTemplate  bool    `json:"is_template"`
	CaseID      *string `json:"case_id"`
	ClientID    *string `json:"client_id"`
}

// DocumentFilters narrows ListDocuments
type DocumentFilters struct {
	Type          string
	CaseID        string
	ClientID      string
	TemplatesOnly bool
}

// DocumentStats holds the counters of the documents page
type DocumentStats struct {
	Total     int64 `json:"total"`
	Contracts int64 `json:"contracts"`
	Evidence  int64 `json:"evidence"`
	Templates int64 `json:"templates"`
}

func (in DocumentInput) apply(ctx context.Context, t *Tenant, d *models.Document) error {
	in.Name = strings.TrimSpace(in.Name)
	in.CaseID = trimmedPtr(in.CaseID)
	in.ClientID = trimmedPtr(in.ClientID)

	if err := validateInput(in); err != nil {
		return err
	}
	if err := t.requireRef(ctx, &models.Case{}, in.CaseID, "case_id"); err != nil {
		return err
	}
	if err := t.requireRef(ctx, &models.Client{}, in.ClientID, "client_id"); err != nil {
		return err
	}

	d.Name = in.Name
	d.Description = sanitizeText(in.Description)
	d.Type = in.Type
	if d.Type == "" {
		d.Type = models.DocumentTypeOther
	}
	d.IsTemplate = in.IsTemplate || d.Type == models.DocumentTypeTemplate
	d.CaseID = in.CaseID
	d.ClientID = in.ClientID
	return nil
}

func setContent(d *models.Document, content *BlobRef) {
	if content == nil {
		return
	}
	d.FileURL = content.URL
	d.FileKey = content.Key
	d.FileSize = content.Size
	d.MimeType = content.MimeType
}

// CreateDocument registers a document at version 1. Content may be attached
// later with ReplaceDocumentContent.
func CreateDocument(ctx context.Context, t *Tenant, in DocumentInput, content *BlobRef) (*models.Document, error) {
	doc := &models.Document{UploadedByID: ptrIfNotEmpty(t.ProfileID), Version: 1}
	if err := in.apply(ctx, t, doc); err != nil {
		return nil, err
	}
	setContent(doc, content)
	if err := t.create(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UpdateDocument edits metadata only; the version does not move
func UpdateDocument(ctx context.Context, t *Tenant, id string, in DocumentInput) (*models.Document, error) {
	var doc models.Document
	if err := t.first(ctx, &doc, id); err != nil {
		return nil, err
	}
	if err := in.apply(ctx, t, &doc); err != nil {
		return nil, err
	}
	// content columns belong to ReplaceDocumentContent
	if err := t.update(ctx, &doc, models.AuditActionUpdate, contentColumns...); err != nil {
		return nil, err
	}
	return &doc, nil
}

var contentColumns = []string{"FileURL", "FileKey", "FileSize", "MimeType", "Version", "UploadedByID"}

// ReplaceDocumentContent points the document at new content and bumps its
// version by one. The increment happens in the UPDATE itself, so concurrent
// replacements each get their own version.
func ReplaceDocumentContent(ctx context.Context, t *Tenant, id string, content BlobRef) (*models.Document, error) {
	var doc models.Document
	err := t.Transaction(ctx, func(tx *Tenant) error {
		res := tx.query(ctx, &models.Document{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"file_url":       content.URL,
				"file_key":       content.Key,
				"file_size":      content.Size,
				"mime_type":      content.MimeType,
				"uploaded_by_id": ptrIfNotEmpty(t.ProfileID),
				"version":        gorm.Expr("version + 1"),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to replace document content: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.first(ctx, &doc, id); err != nil {
			return err
		}
		return tx.audit(models.AuditActionContentReplace, &doc)
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordMutation(doc.TableName(), string(models.AuditActionContentReplace))
	return &doc, nil
}

// UploadDocumentContent streams bytes for document id to the blob store and
// records them as the document's new content
func UploadDocumentContent(ctx context.Context, t *Tenant, store BlobStore, id, filename string, size int64, r io.Reader) (*models.Document, error) {
	if err := ValidateDocumentUpload(filename, size); err != nil {
		return nil, err
	}

	var doc models.Document
	if err := t.first(ctx, &doc, id); err != nil {
		return nil, err
	}
	previousKey := doc.FileKey

	ref, err := store.Put(ctx, r, DocumentContentKey(t.FirmID, doc.ID, filename), contentTypeFor(filename), size)
	if err != nil {
		return nil, fmt.Errorf("failed to store document content: %w", err)
	}

	updated, err := ReplaceDocumentContent(ctx, t, doc.ID, *ref)
	if err != nil {
		if delErr := store.Delete(ctx, ref.Key); delErr != nil {
			t.log.Warn("failed to remove orphaned blob", zap.String("key", ref.Key), zap.Error(delErr))
		}
		return nil, err
	}

	t.log.Info("document content replaced",
		zap.String("document_id", doc.ID),
		zap.Int("version", updated.Version),
		zap.String("previous_key", previousKey),
	)
	return updated, nil
}

// GetDocument returns a document with its case, client and uploader
func GetDocument(ctx context.Context, t *Tenant, id string) (*models.Document, error) {
	var doc models.Document
	if err := t.first(ctx, &doc, id, "Case", "Client", "UploadedBy"); err != nil {
		return nil, err
	}
	return &doc, nil
}

// DeleteDocument removes a document record. Stored content is kept.
func DeleteDocument(ctx context.Context, t *Tenant, id string) error {
	var doc models.Document
	if err := t.first(ctx, &doc, id); err != nil {
		return err
	}
	return t.remove(ctx, &doc)
}

// ListDocuments returns the firm's documents, newest first
func ListDocuments(ctx context.Context, t *Tenant, filters DocumentFilters) ([]models.Document, error) {
	return findScoped[models.Document](ctx, t, func(q *gorm.DB) *gorm.DB {
		if filters.Type != "" {
			q = q.Where("type = ?", filters.Type)
		}
		if filters.CaseID != "" {
			q = q.Where("case_id = ?", filters.CaseID)
		}
		if filters.ClientID != "" {
			q = q.Where("client_id = ?", filters.ClientID)
		}
		if filters.TemplatesOnly {
			q = q.Where("is_template = ?", true)
		}
		return q.Order("created_at DESC")
	})
}

// GetDocumentStats counts documents by the categories shown in the UI
func GetDocumentStats(ctx context.Context, t *Tenant) (*DocumentStats, error) {
	var stats DocumentStats
	var err error
	model := &models.Document{}

	if stats.Total, err = t.count(ctx, model, nil); err != nil {
		return nil, err
	}
	if stats.Contracts, err = t.count(ctx, model, func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ?", models.DocumentTypeContract)
	}); err != nil {
		return nil, err
	}
	if stats.Evidence, err = t.count(ctx, model, func(q *gorm.DB) *gorm.DB {
		return q.Where("type = ?", models.DocumentTypeEvidence)
	}); err != nil {
		return nil, err
	}
	if stats.Templates, err = t.count(ctx, model, func(q *gorm.DB) *gorm.DB {
		return q.Where("is_template = ?", true)
	}); err != nil {
		return nil, err
	}
	return &stats, nil
}
