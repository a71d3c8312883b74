package selection

import (
	"github.com/shopspring/decimal"
)

// Multipliers model negotiating leverage. When franchise stock is abundant
// the buyer expects a deep discount to bother with a broker, so only a
// fifth of face value counts toward the opportunity.
var (
	multiplierAbundant = decimal.NewFromFloat(0.2)
	multiplierScarce   = decimal.NewFromFloat(0.7)
)

// OpportunityInput carries the pricing signals for one selected candidate.
// ReferencePrice and FranchiseQty come from the benchmark collaborator and
// may be absent; MinOrderValue comes from the supplier's listing.
type OpportunityInput struct {
	ReferencePrice decimal.NullDecimal
	FranchiseQty   *int
	RequestedQty   int
	Quantity       int
	MinOrderValue  decimal.NullDecimal
}

// OpportunityResult reports whether the candidate survives the filter and
// the estimated deal value used to decide.
type OpportunityResult struct {
	Keep           bool
	EstimatedValue decimal.NullDecimal
}

// OpportunityFilter drops a supplier whose minimum order value cannot
// plausibly be met by the estimated deal value.
type OpportunityFilter struct{}

func NewOpportunityFilter() *OpportunityFilter {
	return &OpportunityFilter{}
}

// Evaluate keeps any candidate lacking price data (fail-open). With a
// reference price, the estimated value is price x quantity x multiplier;
// the candidate is omitted when the supplier's minimum order value exceeds
// it.
func (f *OpportunityFilter) Evaluate(input OpportunityInput) OpportunityResult {
	if !input.ReferencePrice.Valid {
		return OpportunityResult{Keep: true}
	}

	multiplier := multiplierScarce
	if input.FranchiseQty != nil && *input.FranchiseQty >= input.RequestedQty {
		multiplier = multiplierAbundant
	}

	estimated := input.ReferencePrice.Decimal.
		Mul(decimal.NewFromInt(int64(input.Quantity))).
		Mul(multiplier)
	result := OpportunityResult{
		Keep:           true,
		EstimatedValue: decimal.NullDecimal{Decimal: estimated, Valid: true},
	}

	if input.MinOrderValue.Valid && input.MinOrderValue.Decimal.GreaterThan(estimated) {
		result.Keep = false
	}
	return result
}
