package requests

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
	"github.com/go-playground/validator/v10"
)

// PartRequest is one line to be sourced. Immutable once enqueued; consumed
// once per batch run.
type PartRequest struct {
	LineNumber       int    `validate:"gte=0"`
	PartNumber       string `validate:"required"`
	Quantity         int    `validate:"gt=0"`
	CustomerPartCode string
}

var validate = validator.New()

// Validate checks a single request line.
func (p PartRequest) Validate() error {
	if err := validate.Struct(p); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("invalid part request line %d", p.LineNumber))
	}
	return nil
}

// ValidateAll checks every line and fails on the first invalid one.
func ValidateAll(parts []PartRequest) error {
	for _, p := range parts {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
