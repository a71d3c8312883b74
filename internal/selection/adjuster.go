package selection

import (
	"fmt"

	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
)

// QuantityAdjuster computes the quantity to request from an under-stocked
// supplier. Asking for the full shortfall discourages suppliers from
// quoting, so the adjusted quantity stays close to their actual stock and
// lands on a round number.
type QuantityAdjuster struct{}

func NewQuantityAdjuster() *QuantityAdjuster {
	return &QuantityAdjuster{}
}

// Adjust returns the quantity to submit and whether it differs from the
// requested quantity. Suppliers that can cover the request get the original
// quantity unchanged.
//
// The rounding ladder picks a granularity matching the stock's magnitude:
// nearest 5 below 50, nearest 10 below 250, nearest 25 below 1000, nearest
// 100 above. The result never drops below 90% of stock (rounding falls back
// to the exact stock quantity), never exceeds stock, and is at least 1.
func (a *QuantityAdjuster) Adjust(requestedQty, stock int) (int, bool, error) {
	if requestedQty <= 0 {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("requested quantity must be positive, got %d", requestedQty))
	}
	if stock < 0 {
		return 0, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stock must not be negative, got %d", stock))
	}

	if stock >= requestedQty {
		return requestedQty, false, nil
	}

	adjusted := roundDown(stock)

	floor := (stock * 9) / 10
	if adjusted < floor {
		adjusted = stock
	}
	if adjusted > stock {
		adjusted = stock
	}
	if adjusted < 1 {
		adjusted = 1
	}
	return adjusted, adjusted != requestedQty, nil
}

func roundDown(target int) int {
	switch {
	case target >= 1000:
		return (target / 100) * 100
	case target >= 250:
		return (target / 25) * 25
	case target >= 50:
		return (target / 10) * 10
	default:
		return (target / 5) * 5
	}
}
