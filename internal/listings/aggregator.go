package listings

import (
	"context"
	"fmt"
	"sort"

	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
)

// Classifier labels the freshness signal of a raw date code.
type Classifier interface {
	Classify(ctx context.Context, rawDateCode string) enums.DateCodeStatus
}

// Aggregator collapses raw listing rows into one candidate per
// (supplier, region).
type Aggregator struct {
	classifier Classifier
}

// AggregatorParams carries the dependencies for NewAggregator.
type AggregatorParams struct {
	Classifier Classifier
}

// NewAggregator builds an aggregator backed by the provided classifier.
func NewAggregator(params AggregatorParams) (*Aggregator, error) {
	if params.Classifier == nil {
		return nil, fmt.Errorf("classifier required")
	}
	return &Aggregator{classifier: params.Classifier}, nil
}

// Aggregate groups rows by (supplier, region), summing quantities over rows
// that pass the authorized and positive-quantity filters and keeping the most
// favorable date code status seen. Rows from excluded regions still produce
// their own candidate so the selector can record why they were not contacted.
// Deterministic given identical input: candidates come back ordered by
// supplier name then region.
func (a *Aggregator) Aggregate(ctx context.Context, records []ListingRecord, requestedQty int) ([]SupplierCandidate, error) {
	if requestedQty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("requested quantity must be positive, got %d", requestedQty))
	}

	buckets := make(map[Key]*SupplierCandidate)
	for _, rec := range records {
		if rec.Supplier == "" {
			continue
		}
		if rec.Authorized {
			continue
		}
		if rec.AvailableQuantity <= 0 {
			continue
		}
		if !rec.Region.IsValid() {
			continue
		}

		status := a.classifier.Classify(ctx, rec.RawDateCode)

		key := Key{Supplier: rec.Supplier, Region: rec.Region}
		candidate, ok := buckets[key]
		if !ok {
			candidate = &SupplierCandidate{
				Supplier:       rec.Supplier,
				Region:         rec.Region,
				DateCodeStatus: status,
				BestDateCode:   rec.RawDateCode,
			}
			buckets[key] = candidate
		} else if status.BetterThan(candidate.DateCodeStatus) {
			candidate.DateCodeStatus = status
			candidate.BestDateCode = rec.RawDateCode
		}
		candidate.TotalQuantity += rec.AvailableQuantity
	}

	out := make([]SupplierCandidate, 0, len(buckets))
	for _, candidate := range buckets {
		candidate.MeetsRequested = candidate.TotalQuantity >= requestedQty
		out = append(out, *candidate)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Supplier != out[j].Supplier {
			return out[i].Supplier < out[j].Supplier
		}
		return out[i].Region < out[j].Region
	})
	return out, nil
}
