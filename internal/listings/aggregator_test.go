package listings

import (
	"context"
	"testing"

	"github.com/angelmondragon/sourcing-engine/pkg/enums"
)

type stubClassifier struct {
	byCode map[string]enums.DateCodeStatus
}

func (s stubClassifier) Classify(_ context.Context, raw string) enums.DateCodeStatus {
	if status, ok := s.byCode[raw]; ok {
		return status
	}
	return enums.DateCodeUnknown
}

func newTestAggregator(t *testing.T, byCode map[string]enums.DateCodeStatus) *Aggregator {
	t.Helper()
	agg, err := NewAggregator(AggregatorParams{Classifier: stubClassifier{byCode: byCode}})
	if err != nil {
		t.Fatalf("bootstrap aggregator: %v", err)
	}
	return agg
}

func TestAggregateSumsQualifyingRows(t *testing.T) {
	agg := newTestAggregator(t, nil)

	// five rows, one supplier, one region
	records := []ListingRecord{
		{PartVariant: "LM358N", Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 500},
		{PartVariant: "LM358N-TR", Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 500},
		{PartVariant: "LM358N", Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 10},
		{PartVariant: "LM358N", Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 10},
		{PartVariant: "LM358N", Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 5},
	}

	candidates, err := agg.Aggregate(context.Background(), records, 100)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.TotalQuantity != 1025 {
		t.Fatalf("expected total 1025, got %d", got.TotalQuantity)
	}
	if !got.MeetsRequested {
		t.Fatalf("candidate should meet requested quantity")
	}
}

func TestAggregateSkipsNonQualifyingRows(t *testing.T) {
	agg := newTestAggregator(t, nil)

	records := []ListingRecord{
		{Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 100},
		{Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 0},
		{Supplier: "Alpha", Region: enums.RegionAmericas, AvailableQuantity: 50, Authorized: true},
		{Supplier: "", Region: enums.RegionAmericas, AvailableQuantity: 75},
	}

	candidates, err := agg.Aggregate(context.Background(), records, 100)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].TotalQuantity != 100 {
		t.Fatalf("expected total 100, got %d", candidates[0].TotalQuantity)
	}
}

func TestAggregateKeepsMostFavorableDateCode(t *testing.T) {
	agg := newTestAggregator(t, map[string]enums.DateCodeStatus{
		"1845": enums.DateCodeOld,
		"2610": enums.DateCodeFresh,
		"":     enums.DateCodeUnknown,
	})

	records := []ListingRecord{
		{Supplier: "Beta", Region: enums.RegionEurope, AvailableQuantity: 10, RawDateCode: "1845"},
		{Supplier: "Beta", Region: enums.RegionEurope, AvailableQuantity: 10, RawDateCode: ""},
		{Supplier: "Beta", Region: enums.RegionEurope, AvailableQuantity: 10, RawDateCode: "2610"},
	}

	candidates, err := agg.Aggregate(context.Background(), records, 5)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.DateCodeStatus != enums.DateCodeFresh {
		t.Fatalf("expected fresh status, got %s", got.DateCodeStatus)
	}
	if got.BestDateCode != "2610" {
		t.Fatalf("expected best date code 2610, got %q", got.BestDateCode)
	}
}

func TestAggregateSplitsSupplierByRegion(t *testing.T) {
	agg := newTestAggregator(t, nil)

	records := []ListingRecord{
		{Supplier: "Gamma", Region: enums.RegionAmericas, AvailableQuantity: 200},
		{Supplier: "Gamma", Region: enums.RegionAsiaOther, AvailableQuantity: 300},
	}

	candidates, err := agg.Aggregate(context.Background(), records, 100)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		switch c.Region {
		case enums.RegionAmericas:
			if c.TotalQuantity != 200 {
				t.Errorf("americas total = %d, want 200", c.TotalQuantity)
			}
		case enums.RegionAsiaOther:
			if c.TotalQuantity != 300 {
				t.Errorf("asia total = %d, want 300", c.TotalQuantity)
			}
		default:
			t.Errorf("unexpected region %s", c.Region)
		}
	}
}

func TestAggregateRejectsBadQuantity(t *testing.T) {
	agg := newTestAggregator(t, nil)
	if _, err := agg.Aggregate(context.Background(), nil, 0); err == nil {
		t.Fatalf("expected validation error for zero requested quantity")
	}
}
