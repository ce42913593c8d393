package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NightSight1044/legalCRM1/logger"
	"github.com/NightSight1044/legalCRM1/metrics"
	"github.com/NightSight1044/legalCRM1/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Tenant is the resolved firm of the current actor. All reads and writes
// of firm-owned records go through it; nothing else in the package adds
// the firm filter by hand.
type Tenant struct {
	FirmID    string
	ProfileID string
	Role      string

	db  *gorm.DB
	log *zap.Logger
}

// ResolveTenant maps an authenticated actor to its firm
func ResolveTenant(ctx context.Context, db *gorm.DB, actorID string) (*Tenant, error) {
	if actorID == "" {
		return nil, ErrNotAuthenticated
	}

	var profile models.Profile
	err := db.WithContext(ctx).Where("id = ?", actorID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	if !profile.IsActive {
		return nil, ErrNotAuthenticated
	}
	if !profile.HasFirm() {
		return nil, ErrProfileNotFound
	}

	return NewTenant(db, *profile.FirmID, profile.ID, profile.Role), nil
}

// NewTenant builds a tenant for an already-resolved firm. Background jobs
// and the admin CLI use it directly.
func NewTenant(db *gorm.DB, firmID, profileID, role string) *Tenant {
	return &Tenant{
		FirmID:    firmID,
		ProfileID: profileID,
		Role:      role,
		db:        db,
		log:       logger.WithTenant(zap.L(), firmID, profileID),
	}
}

// Transaction runs fn against a tenant bound to a single database transaction
func (t *Tenant) Transaction(ctx context.Context, fn func(tx *Tenant) error) error {
	return t.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		scoped := *t
		scoped.db = gtx
		return fn(&scoped)
	})
}

func (t *Tenant) firmClause() clause.Expression {
	return clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "firm_id"}, Value: t.FirmID}
}

// query starts a firm-filtered query on model's table
func (t *Tenant) query(ctx context.Context, model models.TenantOwned) *gorm.DB {
	return t.db.WithContext(ctx).Model(model).Where(t.firmClause())
}

// first loads one record by id within the firm
func (t *Tenant) first(ctx context.Context, dest models.TenantOwned, id string, preloads ...string) error {
	if id == "" {
		return ErrNotFound
	}
	q := t.query(ctx, dest)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	err := q.Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: id}).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", dest.TableName(), err)
	}
	return t.ensureOwned(dest)
}

// exists checks that id resolves to a record of model's type within the firm
func (t *Tenant) exists(ctx context.Context, model models.TenantOwned, id string) (bool, error) {
	var count int64
	err := t.query(ctx, model).
		Where(clause.Eq{Column: clause.Column{Table: clause.CurrentTable, Name: "id"}, Value: id}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", model.TableName(), err)
	}
	return count > 0, nil
}

// requireRef validates an optional reference field. Missing records and
// records of other firms produce the same error.
func (t *Tenant) requireRef(ctx context.Context, model models.TenantOwned, id *string, field string) error {
	if id == nil || *id == "" {
		return nil
	}
	ok, err := t.exists(ctx, model, *id)
	if err != nil {
		return err
	}
	if !ok {
		return NewValidationError(field, "does not reference a record in this firm")
	}
	return nil
}

// requireProfile validates a reference to a profile of the same firm
func (t *Tenant) requireProfile(ctx context.Context, id *string, field string) error {
	if id == nil || *id == "" {
		return nil
	}
	var count int64
	err := t.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND firm_id = ?", *id, t.FirmID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check profile: %w", err)
	}
	if count == 0 {
		return NewValidationError(field, "does not reference a member of this firm")
	}
	return nil
}

// count counts firm rows of model's table after applying build
func (t *Tenant) count(ctx context.Context, model models.TenantOwned, build func(*gorm.DB) *gorm.DB) (int64, error) {
	q := t.query(ctx, model)
	if build != nil {
		q = build(q)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", model.TableName(), err)
	}
	return n, nil
}

// findScoped lists firm rows of T and re-checks every row's owner
func findScoped[T any, P interface {
	*T
	models.TenantOwned
}](ctx context.Context, t *Tenant, build func(*gorm.DB) *gorm.DB) ([]T, error) {
	var rows []T
	q := t.query(ctx, P(new(T)))
	if build != nil {
		q = build(q)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", P(new(T)).TableName(), err)
	}
	for i := range rows {
		if err := t.ensureOwned(P(&rows[i])); err != nil {
			return nil, err
		}
	}
	return rows, nil
}

// create stamps the firm on rec, inserts it and writes the audit row in
// the same transaction
func (t *Tenant) create(ctx context.Context, rec models.TenantOwned) error {
	rec.AssignTenant(t.FirmID)
	err := t.Transaction(ctx, func(tx *Tenant) error {
		if err := tx.db.Create(rec).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", rec.TableName(), err)
		}
		return tx.audit(models.AuditActionCreate, rec)
	})
	if err != nil {
		return err
	}
	metrics.RecordMutation(rec.TableName(), string(models.AuditActionCreate))
	return nil
}

// update writes every column of rec except identity, ownership and the
// fields named in omit. The firm filter is part of the UPDATE so a foreign
// row is never touched.
func (t *Tenant) update(ctx context.Context, rec models.TenantOwned, action models.AuditAction, omit ...string) error {
	if err := t.ensureOwned(rec); err != nil {
		return err
	}
	err := t.Transaction(ctx, func(tx *Tenant) error {
		res := tx.db.Model(rec).
			Where(tx.firmClause()).
			Select("*").
			Omit(append([]string{"ID", "FirmID", "CreatedAt", "DeletedAt", clause.Associations}, omit...)...).
			Updates(rec)
		if res.Error != nil {
			return fmt.Errorf("failed to update %s: %w", rec.TableName(), res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.audit(action, rec)
	})
	if err != nil {
		return err
	}
	metrics.RecordMutation(rec.TableName(), string(action))
	return nil
}

// remove soft-deletes rec within the firm
func (t *Tenant) remove(ctx context.Context, rec models.TenantOwned) error {
	if err := t.ensureOwned(rec); err != nil {
		return err
	}
	err := t.Transaction(ctx, func(tx *Tenant) error {
		res := tx.db.Where(tx.firmClause()).Delete(rec)
		if res.Error != nil {
			return fmt.Errorf("failed to delete %s: %w", rec.TableName(), res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return tx.audit(models.AuditActionDelete, rec)
	})
	if err != nil {
		return err
	}
	metrics.RecordMutation(rec.TableName(), string(models.AuditActionDelete))
	return nil
}

// ensureOwned is the last line of defence: a row whose firm differs from
// the tenant is an invariant breach, never a user error
func (t *Tenant) ensureOwned(rec models.TenantOwned) error {
	if rec.TenantID() == t.FirmID {
		return nil
	}
	metrics.RecordInvariantBreach(rec.TableName())
	t.log.Error("tenant invariant breach",
		zap.String("resource", rec.TableName()),
		zap.String("row_firm_id", rec.TenantID()),
	)
	return ErrCrossTenantAccess
}

func (t *Tenant) audit(action models.AuditAction, rec models.TenantOwned) error {
	snapshot, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode audit snapshot: %w", err)
	}

	entry := models.AuditLog{
		ProfileID:    ptrIfNotEmpty(t.ProfileID),
		Role:         t.Role,
		FirmID:       t.FirmID,
		ResourceType: rec.TableName(),
		ResourceID:   rec.RecordID(),
		Action:       action,
		NewValues:    string(snapshot),
	}
	if err := t.db.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}
