package models

import (
	"time"

	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SubmissionOutcome is the durable record of one (part, supplier) job, keyed
// by run so reruns can skip pairs that already went out.
type SubmissionOutcome struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RunKey         string              `gorm:"column:run_key;not null;index:idx_outcomes_run_part_supplier"`
	LineNumber     int                 `gorm:"column:line_number;not null"`
	PartNumber     string              `gorm:"column:part_number;not null;index:idx_outcomes_run_part_supplier"`
	Supplier       string              `gorm:"column:supplier;index:idx_outcomes_run_part_supplier"`
	Region         enums.Region        `gorm:"column:region;type:text"`
	QtyRequested   int                 `gorm:"column:qty_requested;not null"`
	QtySent        *int                `gorm:"column:qty_sent"`
	SupplierQty    *int                `gorm:"column:supplier_qty"`
	MinOrderValue  decimal.NullDecimal `gorm:"column:min_order_value;type:numeric"`
	EstimatedValue decimal.NullDecimal `gorm:"column:estimated_value;type:numeric"`
	Status         enums.OutcomeStatus `gorm:"column:status;type:text;not null"`
	Reason         *string             `gorm:"column:reason"`
	ErrorDetail    *string             `gorm:"column:error_detail"`
	WorkerID       int                 `gorm:"column:worker_id"`
	DurationMS     int64               `gorm:"column:duration_ms"`
	SubmittedAt    time.Time           `gorm:"column:submitted_at;not null"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default gorm pluralization.
func (SubmissionOutcome) TableName() string {
	return "submission_outcomes"
}

// BeforeCreate assigns an id when the database has no uuid default (sqlite).
func (o *SubmissionOutcome) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
