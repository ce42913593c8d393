package services

import (
	"context"
	"strings"

	"github.com/NightSight1044/legalCRM1/models"
	"gorm.io/gorm"
)

// ClientInput is the editable part of a client
type ClientInput struct {
	Type        string  `json:"type" validate:"required,oneof=individual company"`
	FullName    string  `json:"full_name" validate:"max=200"`
	CompanyName *string `json:"company_name" validate:"omitempty,max=200"`
	Email       string  `json:"email" validate:"omitempty,email,max=255"`
	Phone       string  `json:"phone" validate:"max=50"`
	Address     string  `json:"address" validate:"max=500"`
	TaxID       string  `json:"tax_id" validate:"max=50"`
	Notes       string  `json:"notes"`
}

// ClientFilters narrows ListClients
type ClientFilters struct {
	Type    string
	Keyword string
}

// ClientDetail is a client with the number of cases it owns
type ClientDetail struct {
	models.Client
	CaseCount int64 `json:"case_count"`
}

// apply validates the input and copies it onto c
func (in ClientInput) apply(c *models.Client) error {
	in.Type = strings.TrimSpace(in.Type)
	in.FullName = strings.TrimSpace(in.FullName)
	in.CompanyName = trimmedPtr(in.CompanyName)

	if err := validateInput(in); err != nil {
		return err
	}

	switch in.Type {
	case models.ClientTypeCompany:
		if in.CompanyName == nil {
			return NewValidationError("company_name", "is required for company clients")
		}
	case models.ClientTypeIndividual:
		if in.FullName == "" {
			return NewValidationError("full_name", "is required for individual clients")
		}
		in.CompanyName = nil
	}

	c.Type = in.Type
	c.FullName = in.FullName
	c.CompanyName = in.CompanyName
	c.Email = strings.ToLower(strings.TrimSpace(in.Email))
	c.Phone = strings.TrimSpace(in.Phone)
	c.Address = sanitizeText(in.Address)
	c.TaxID = strings.TrimSpace(in.TaxID)
	c.Notes = sanitizeText(in.Notes)
	return nil
}

// CreateClient registers a new client in the tenant's firm
func CreateClient(ctx context.Context, t *Tenant, in ClientInput) (*models.Client, error) {
	client := &models.Client{CreatedByID: ptrIfNotEmpty(t.ProfileID)}
	if err := in.apply(client); err != nil {
		return nil, err
	}
	if err := t.create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

// UpdateClient replaces the editable fields of a client
func UpdateClient(ctx context.Context, t *Tenant, id string, in ClientInput) (*models.Client, error) {
	var client models.Client
	if err := t.first(ctx, &client, id); err != nil {
		return nil, err
	}
	if err := in.apply(&client); err != nil {
		return nil, err
	}
	if err := t.update(ctx, &client, models.AuditActionUpdate); err != nil {
		return nil, err
	}
	return &client, nil
}

// GetClient returns a client and its case count
func GetClient(ctx context.Context, t *Tenant, id string) (*ClientDetail, error) {
	var client models.Client
	if err := t.first(ctx, &client, id); err != nil {
		return nil, err
	}
	cases, err := t.count(ctx, &models.Case{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("client_id = ?", client.ID)
	})
	if err != nil {
		return nil, err
	}
	return &ClientDetail{Client: client, CaseCount: cases}, nil
}

// ListClients returns the firm's clients, newest first
func ListClients(ctx context.Context, t *Tenant, filters ClientFilters) ([]models.Client, error) {
	return findScoped[models.Client](ctx, t, func(q *gorm.DB) *gorm.DB {
		if filters.Type != "" {
			q = q.Where("type = ?", filters.Type)
		}
		if kw := strings.TrimSpace(filters.Keyword); kw != "" {
			pattern := "%" + escapeLike(kw) + "%"
			q = q.Where("full_name LIKE ? ESCAPE '\\' OR company_name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", pattern, pattern, pattern)
		}
		return q.Order("created_at DESC")
	})
}

// DeleteClient removes a client that no case references
func DeleteClient(ctx context.Context, t *Tenant, id string) error {
	var client models.Client
	if err := t.first(ctx, &client, id); err != nil {
		return err
	}
	cases, err := t.count(ctx, &models.Case{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("client_id = ?", client.ID)
	})
	if err != nil {
		return err
	}
	if cases > 0 {
		return NewValidationError("id", "client is referenced by existing cases")
	}
	return t.remove(ctx, &client)
}
