package selection

import (
	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
)

// OmittedCandidate records a candidate that was not contacted and why.
type OmittedCandidate struct {
	Candidate listings.SupplierCandidate
	Reason    enums.OmitReason
}

// Decision is the per-part selection result: chosen candidates in rank
// order grouped by region, plus everything left out.
type Decision struct {
	Selected []listings.SupplierCandidate
	Omitted  []OmittedCandidate
}

// SelectedIn returns the chosen candidates for one region, in rank order.
func (d Decision) SelectedIn(region enums.Region) []listings.SupplierCandidate {
	var out []listings.SupplierCandidate
	for _, c := range d.Selected {
		if c.Region == region {
			out = append(out, c)
		}
	}
	return out
}
