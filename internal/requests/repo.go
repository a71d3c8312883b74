package requests

import (
	"context"
	"fmt"

	"github.com/angelmondragon/sourcing-engine/pkg/db/models"
	"gorm.io/gorm"
)

// Repository loads part requests from the sourcing request table.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &Repository{db: db}, nil
}

// ListByRunKey returns the active request lines for one run key, ordered by
// line number.
func (r *Repository) ListByRunKey(ctx context.Context, runKey string) ([]PartRequest, error) {
	var rows []models.RequestLine
	err := r.db.WithContext(ctx).
		Where("run_key = ? AND active = ? AND quantity > 0", runKey, true).
		Order("line_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing request lines for %q: %w", runKey, err)
	}

	parts := make([]PartRequest, 0, len(rows))
	for _, row := range rows {
		req := PartRequest{
			LineNumber: row.LineNumber,
			PartNumber: row.PartNumber,
			Quantity:   row.Quantity,
		}
		if row.CustomerPartCode != nil {
			req.CustomerPartCode = *row.CustomerPartCode
		}
		parts = append(parts, req)
	}
	return parts, nil
}

// Save stores request lines for a run key, replacing any previous set.
func (r *Repository) Save(ctx context.Context, runKey string, parts []PartRequest) error {
	if err := ValidateAll(parts); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_key = ?", runKey).Delete(&models.RequestLine{}).Error; err != nil {
			return fmt.Errorf("clearing request lines for %q: %w", runKey, err)
		}
		for _, p := range parts {
			row := models.RequestLine{
				RunKey:     runKey,
				LineNumber: p.LineNumber,
				PartNumber: p.PartNumber,
				Quantity:   p.Quantity,
				Active:     true,
			}
			if p.CustomerPartCode != "" {
				cpc := p.CustomerPartCode
				row.CustomerPartCode = &cpc
			}
			if err := tx.Create(&row).Error; err != nil {
				return fmt.Errorf("storing request line %d: %w", p.LineNumber, err)
			}
		}
		return nil
	})
}
