package services

import (
	"context"
	"fmt"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	caseNumberPrefix    = "CASO"
	invoiceNumberPrefix = "FAC"
)

// nextSequence atomically increments the firm's counter for kind/year and
// returns the new value. The increment is a single UPDATE, so concurrent
// callers never receive the same number.
func (t *Tenant) nextSequence(ctx context.Context, kind string, year int) (int, error) {
	var next int
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		seed := models.NumberSequence{FirmID: t.FirmID, Kind: kind, Year: year}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
			return fmt.Errorf("failed to create number sequence: %w", err)
		}

		res := tx.Model(&models.NumberSequence{}).
			Where("firm_id = ? AND kind = ? AND year = ?", t.FirmID, kind, year).
			Updates(map[string]interface{}{
				"last_sequence": gorm.Expr("last_sequence + 1"),
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update number sequence: %w", res.Error)
		}

		var seq models.NumberSequence
		if err := tx.Where("firm_id = ? AND kind = ? AND year = ?", t.FirmID, kind, year).First(&seq).Error; err != nil {
			return fmt.Errorf("failed to get number sequence: %w", err)
		}
		next = seq.LastSequence
		return nil
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}

// FormatCaseNumber renders CASO-<year>-<seq>, zero padded to three digits.
// Past 999 the suffix widens rather than wrapping, so numbers stay unique.
func FormatCaseNumber(year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", caseNumberPrefix, year, seq)
}

// FormatInvoiceNumber renders FAC-<year>-<seq> with the same padding rule
// as case numbers
func FormatInvoiceNumber(year, seq int) string {
	return fmt.Sprintf("%s-%d-%03d", invoiceNumberPrefix, year, seq)
}

// GenerateCaseNumber hands out the next case number for the year, skipping
// numbers already typed in by hand
func GenerateCaseNumber(ctx context.Context, t *Tenant, year int) (string, error) {
	for {
		seq, err := t.nextSequence(ctx, models.SequenceKindCase, year)
		if err != nil {
			return "", err
		}
		number := FormatCaseNumber(year, seq)
		taken, err := t.count(ctx, &models.Case{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("case_number = ?", number)
		})
		if err != nil {
			return "", err
		}
		if taken == 0 {
			return number, nil
		}
	}
}

// GenerateInvoiceNumber hands out the next invoice number for the year
func GenerateInvoiceNumber(ctx context.Context, t *Tenant, year int) (string, error) {
	for {
		seq, err := t.nextSequence(ctx, models.SequenceKindInvoice, year)
		if err != nil {
			return "", err
		}
		number := FormatInvoiceNumber(year, seq)
		taken, err := t.count(ctx, &models.Invoice{}, func(q *gorm.DB) *gorm.DB {
			return q.Where("number = ?", number)
		})
		if err != nil {
			return "", err
		}
		if taken == 0 {
			return number, nil
		}
	}
}
