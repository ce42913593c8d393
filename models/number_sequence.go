package models

import "time"

// Sequence kinds
const (
	SequenceKindCase    = "case"
	SequenceKindInvoice = "invoice"
)

// NumberSequence tracks the last number handed out per firm, kind and year
type NumberSequence struct {
	FirmID       string    `gorm:"type:uuid;primaryKey" json:"firm_id"`
	Kind         string    `gorm:"primaryKey" json:"kind"`
	Year         int       `gorm:"primaryKey" json:"year"`
	LastSequence int       `gorm:"not null;default:0" json:"last_sequence"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the table name for NumberSequence model
func (NumberSequence) TableName() string {
	return "number_sequences"
}
