package selection

import (
	"fmt"
	"sort"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
)

// Ranking tiers, lowest value wins. Date code status never rules a supplier
// out, it only orders them; a below-quantity fresh supplier still outranks an
// old one that covers the full quantity.
const (
	tierFreshMeets   = 1
	tierUnknownMeets = 2
	tierFreshBelow   = 3
	tierUnknownBelow = 4
	tierOldMeets     = 5
	tierOldBelow     = 6
)

// Selector ranks candidates and caps the pick per region.
type Selector struct {
	cap int
}

// SelectorParams carries the knobs for NewSelector.
type SelectorParams struct {
	MaxPerRegion int
}

// NewSelector builds a selector with the given per-region cap.
func NewSelector(params SelectorParams) (*Selector, error) {
	if params.MaxPerRegion < 1 {
		return nil, fmt.Errorf("max per region must be at least 1, got %d", params.MaxPerRegion)
	}
	return &Selector{cap: params.MaxPerRegion}, nil
}

// Select picks at most cap candidates per selectable region, plus one buffer
// slot when an UNKNOWN date code made the pick uncertain. Excluded regions
// are never selected. Everything not chosen comes back omitted with a
// reason.
func (s *Selector) Select(candidates []listings.SupplierCandidate, requestedQty int) (Decision, error) {
	if requestedQty <= 0 {
		return Decision{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("requested quantity must be positive, got %d", requestedQty))
	}

	var decision Decision
	byRegion := make(map[enums.Region][]listings.SupplierCandidate)

	for _, c := range candidates {
		if c.Region.Excluded() {
			decision.Omitted = append(decision.Omitted, OmittedCandidate{Candidate: c, Reason: enums.OmitRegionExcluded})
			continue
		}
		byRegion[c.Region] = append(byRegion[c.Region], c)
	}

	for _, region := range enums.SelectableRegions() {
		pool := byRegion[region]
		if len(pool) == 0 {
			continue
		}

		rank(pool, requestedQty)

		// When enough suppliers already cover the full quantity, tiny
		// below-quantity offers are noise rather than overflow.
		pool, belowOmitted := dropBelowWhenCovered(pool, requestedQty, s.cap)
		decision.Omitted = append(decision.Omitted, belowOmitted...)

		limit := s.cap
		if hasUnknown(pool[:min(limit, len(pool))]) {
			limit++
		}
		if limit > len(pool) {
			limit = len(pool)
		}

		decision.Selected = append(decision.Selected, pool[:limit]...)
		for _, c := range pool[limit:] {
			decision.Omitted = append(decision.Omitted, OmittedCandidate{Candidate: c, Reason: enums.OmitCapExceeded})
		}
	}

	return decision, nil
}

// rank sorts candidates best-first. Candidates that meet the requested
// quantity are mutually equal within a tier; below-quantity candidates order
// by descending total (closer to demand ranks higher).
func rank(pool []listings.SupplierCandidate, requestedQty int) {
	sort.SliceStable(pool, func(i, j int) bool {
		ti := tierOf(pool[i], requestedQty)
		tj := tierOf(pool[j], requestedQty)
		if ti != tj {
			return ti < tj
		}
		if pool[i].TotalQuantity >= requestedQty && pool[j].TotalQuantity >= requestedQty {
			return false
		}
		return pool[i].TotalQuantity > pool[j].TotalQuantity
	})
}

func tierOf(c listings.SupplierCandidate, requestedQty int) int {
	meets := c.TotalQuantity >= requestedQty
	switch c.DateCodeStatus {
	case enums.DateCodeFresh:
		if meets {
			return tierFreshMeets
		}
		return tierFreshBelow
	case enums.DateCodeOld:
		if meets {
			return tierOldMeets
		}
		return tierOldBelow
	default:
		if meets {
			return tierUnknownMeets
		}
		return tierUnknownBelow
	}
}

// dropBelowWhenCovered removes below-quantity candidates from a ranked pool
// once the region already holds cap candidates that meet the requested
// quantity.
func dropBelowWhenCovered(pool []listings.SupplierCandidate, requestedQty int, cap int) ([]listings.SupplierCandidate, []OmittedCandidate) {
	meets := 0
	for _, c := range pool {
		if c.TotalQuantity >= requestedQty {
			meets++
		}
	}
	if meets < cap {
		return pool, nil
	}

	kept := pool[:0:0]
	var omitted []OmittedCandidate
	for _, c := range pool {
		if c.TotalQuantity >= requestedQty {
			kept = append(kept, c)
			continue
		}
		omitted = append(omitted, OmittedCandidate{Candidate: c, Reason: enums.OmitBelowQuantity})
	}
	return kept, omitted
}

func hasUnknown(pool []listings.SupplierCandidate) bool {
	for _, c := range pool {
		if c.DateCodeStatus == enums.DateCodeUnknown {
			return true
		}
	}
	return false
}
