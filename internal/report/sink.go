package report

import (
	"context"
	"fmt"

	"github.com/angelmondragon/sourcing-engine/internal/batch"
	"github.com/angelmondragon/sourcing-engine/pkg/db/models"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"gorm.io/gorm"
)

// DBSink persists outcomes and answers the rerun dedupe lookup. Stored
// rows are the durable sent-ledger: a rerun of the same run key skips
// pairs that already have a SENT row.
type DBSink struct {
	db *gorm.DB
}

func NewDBSink(db *gorm.DB) (*DBSink, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &DBSink{db: db}, nil
}

// SaveOutcomes stores every outcome of a run.
func (s *DBSink) SaveOutcomes(ctx context.Context, runKey string, outcomes []batch.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	rows := make([]models.SubmissionOutcome, 0, len(outcomes))
	for _, out := range outcomes {
		row := models.SubmissionOutcome{
			RunKey:         runKey,
			LineNumber:     out.LineNumber,
			PartNumber:     out.PartNumber,
			Supplier:       out.Supplier,
			Region:         out.Region,
			QtyRequested:   out.QtyRequested,
			QtySent:        out.QtySent,
			SupplierQty:    out.SupplierQty,
			MinOrderValue:  out.MinOrderValue,
			EstimatedValue: out.EstimatedValue,
			Status:         out.Status,
			WorkerID:       out.WorkerID,
			DurationMS:     out.Duration.Milliseconds(),
			SubmittedAt:    out.Timestamp,
		}
		if out.Reason != "" {
			reason := out.Reason
			row.Reason = &reason
		}
		if out.ErrorDetail != "" {
			detail := out.ErrorDetail
			row.ErrorDetail = &detail
		}
		rows = append(rows, row)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("storing %d outcomes for %q: %w", len(rows), runKey, err)
	}
	return nil
}

// WasSent reports whether a (part, supplier) pair already has a SENT row
// for this run key.
func (s *DBSink) WasSent(ctx context.Context, runKey, partNumber, supplier string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SubmissionOutcome{}).
		Where("run_key = ? AND part_number = ? AND supplier = ? AND status = ?",
			runKey, partNumber, supplier, enums.OutcomeSent).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking sent ledger for %q: %w", partNumber, err)
	}
	return count > 0, nil
}
