package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestLine is one sourcing request line belonging to a batch run key.
type RequestLine struct {
	ID               uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RunKey           string    `gorm:"column:run_key;not null;index"`
	LineNumber       int       `gorm:"column:line_number;not null"`
	PartNumber       string    `gorm:"column:part_number;not null"`
	Quantity         int       `gorm:"column:quantity;not null"`
	CustomerPartCode *string   `gorm:"column:customer_part_code"`
	Active           bool      `gorm:"column:active;not null;default:true"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName overrides the default gorm pluralization.
func (RequestLine) TableName() string {
	return "sourcing_request_lines"
}

// BeforeCreate assigns an id when the database has no uuid default (sqlite).
func (r *RequestLine) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
