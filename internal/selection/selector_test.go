package selection

import (
	"testing"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
)

func newTestSelector(t *testing.T, cap int) *Selector {
	t.Helper()
	sel, err := NewSelector(SelectorParams{MaxPerRegion: cap})
	if err != nil {
		t.Fatalf("bootstrap selector: %v", err)
	}
	return sel
}

func candidate(name string, region enums.Region, qty int, status enums.DateCodeStatus) listings.SupplierCandidate {
	return listings.SupplierCandidate{
		Supplier:       name,
		Region:         region,
		TotalQuantity:  qty,
		DateCodeStatus: status,
	}
}

func TestSelectOrdersByTier(t *testing.T) {
	sel := newTestSelector(t, 10)

	pool := []listings.SupplierCandidate{
		candidate("old-below", enums.RegionAmericas, 50, enums.DateCodeOld),
		candidate("old-meets", enums.RegionAmericas, 200, enums.DateCodeOld),
		candidate("unknown-below", enums.RegionAmericas, 60, enums.DateCodeUnknown),
		candidate("fresh-below", enums.RegionAmericas, 40, enums.DateCodeFresh),
		candidate("unknown-meets", enums.RegionAmericas, 150, enums.DateCodeUnknown),
		candidate("fresh-meets", enums.RegionAmericas, 100, enums.DateCodeFresh),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}

	want := []string{"fresh-meets", "unknown-meets", "fresh-below", "unknown-below", "old-meets", "old-below"}
	if len(decision.Selected) != len(want) {
		t.Fatalf("expected %d selected, got %d", len(want), len(decision.Selected))
	}
	for i, name := range want {
		if decision.Selected[i].Supplier != name {
			t.Errorf("position %d = %s, want %s", i, decision.Selected[i].Supplier, name)
		}
	}
}

func TestSelectBelowQuantityOrdersByDescendingStock(t *testing.T) {
	sel := newTestSelector(t, 10)

	pool := []listings.SupplierCandidate{
		candidate("small", enums.RegionAmericas, 20, enums.DateCodeFresh),
		candidate("large", enums.RegionAmericas, 90, enums.DateCodeFresh),
		candidate("mid", enums.RegionAmericas, 55, enums.DateCodeFresh),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := []string{"large", "mid", "small"}
	for i, name := range want {
		if decision.Selected[i].Supplier != name {
			t.Errorf("position %d = %s, want %s", i, decision.Selected[i].Supplier, name)
		}
	}
}

func TestSelectCapsPerRegion(t *testing.T) {
	sel := newTestSelector(t, 3)

	var pool []listings.SupplierCandidate
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		pool = append(pool, candidate(name, enums.RegionAmericas, 500, enums.DateCodeFresh))
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 3 {
		t.Fatalf("expected 3 selected, got %d", len(decision.Selected))
	}
	capExceeded := 0
	for _, o := range decision.Omitted {
		if o.Reason == enums.OmitCapExceeded {
			capExceeded++
		}
	}
	if capExceeded != 2 {
		t.Fatalf("expected 2 cap-exceeded omissions, got %d", capExceeded)
	}
}

func TestSelectBufferSlotForUnknown(t *testing.T) {
	sel := newTestSelector(t, 3)

	pool := []listings.SupplierCandidate{
		candidate("u1", enums.RegionAmericas, 500, enums.DateCodeUnknown),
		candidate("u2", enums.RegionAmericas, 500, enums.DateCodeUnknown),
		candidate("u3", enums.RegionAmericas, 500, enums.DateCodeUnknown),
		candidate("u4", enums.RegionAmericas, 500, enums.DateCodeUnknown),
		candidate("u5", enums.RegionAmericas, 500, enums.DateCodeUnknown),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 4 {
		t.Fatalf("expected cap+1 selected with unknown date codes, got %d", len(decision.Selected))
	}
}

func TestSelectNoBufferForConfirmedFresh(t *testing.T) {
	sel := newTestSelector(t, 3)

	var pool []listings.SupplierCandidate
	for _, name := range []string{"a", "b", "c", "d"} {
		pool = append(pool, candidate(name, enums.RegionAmericas, 500, enums.DateCodeFresh))
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 3 {
		t.Fatalf("expected cap selected, got %d", len(decision.Selected))
	}
}

func TestSelectOmitsExcludedRegion(t *testing.T) {
	sel := newTestSelector(t, 3)

	pool := []listings.SupplierCandidate{
		candidate("dual", enums.RegionAmericas, 500, enums.DateCodeFresh),
		candidate("dual", enums.RegionAsiaOther, 500, enums.DateCodeFresh),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 1 {
		t.Fatalf("expected 1 selected, got %d", len(decision.Selected))
	}
	if decision.Selected[0].Region != enums.RegionAmericas {
		t.Fatalf("expected americas candidate selected, got %s", decision.Selected[0].Region)
	}
	if len(decision.Omitted) != 1 {
		t.Fatalf("expected 1 omitted, got %d", len(decision.Omitted))
	}
	if decision.Omitted[0].Reason != enums.OmitRegionExcluded {
		t.Fatalf("expected REGION_EXCLUDED, got %s", decision.Omitted[0].Reason)
	}
}

func TestSelectDropsBelowQuantityWhenRegionCovered(t *testing.T) {
	sel := newTestSelector(t, 3)

	pool := []listings.SupplierCandidate{
		candidate("full1", enums.RegionAmericas, 500, enums.DateCodeFresh),
		candidate("full2", enums.RegionAmericas, 500, enums.DateCodeFresh),
		candidate("full3", enums.RegionAmericas, 500, enums.DateCodeFresh),
		candidate("tiny", enums.RegionAmericas, 5, enums.DateCodeFresh),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 3 {
		t.Fatalf("expected 3 selected, got %d", len(decision.Selected))
	}
	if len(decision.Omitted) != 1 {
		t.Fatalf("expected 1 omitted, got %d", len(decision.Omitted))
	}
	if decision.Omitted[0].Reason != enums.OmitBelowQuantity {
		t.Fatalf("expected BELOW_QUANTITY, got %s", decision.Omitted[0].Reason)
	}
	if decision.Omitted[0].Candidate.Supplier != "tiny" {
		t.Fatalf("expected tiny omitted, got %s", decision.Omitted[0].Candidate.Supplier)
	}
}

func TestSelectKeepsBelowQuantityWhenCoverageShort(t *testing.T) {
	sel := newTestSelector(t, 3)

	pool := []listings.SupplierCandidate{
		candidate("full", enums.RegionAmericas, 500, enums.DateCodeFresh),
		candidate("partial", enums.RegionAmericas, 60, enums.DateCodeFresh),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 2 {
		t.Fatalf("expected both candidates selected, got %d", len(decision.Selected))
	}
}

func TestSelectRegionsIndependent(t *testing.T) {
	sel := newTestSelector(t, 1)

	pool := []listings.SupplierCandidate{
		candidate("am", enums.RegionAmericas, 500, enums.DateCodeFresh),
		candidate("eu", enums.RegionEurope, 500, enums.DateCodeFresh),
	}

	decision, err := sel.Select(pool, 100)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(decision.Selected) != 2 {
		t.Fatalf("expected one pick per region, got %d", len(decision.Selected))
	}
	if got := decision.SelectedIn(enums.RegionEurope); len(got) != 1 || got[0].Supplier != "eu" {
		t.Fatalf("unexpected europe selection %+v", got)
	}
}

func TestSelectRejectsBadQuantity(t *testing.T) {
	sel := newTestSelector(t, 3)
	if _, err := sel.Select(nil, 0); err == nil {
		t.Fatalf("expected validation error for zero requested quantity")
	}
}
