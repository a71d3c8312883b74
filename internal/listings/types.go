package listings

import "github.com/angelmondragon/sourcing-engine/pkg/enums"

// ListingRecord is one raw marketplace row for a part. The part variant may
// differ from the requested identifier by a packaging suffix.
type ListingRecord struct {
	PartVariant       string
	Supplier          string
	Region            enums.Region
	AvailableQuantity int
	RawDateCode       string
	Authorized        bool
}

// SupplierCandidate is the aggregated offer of one supplier in one region.
// Built fresh per part per run; never persisted across runs.
type SupplierCandidate struct {
	Supplier       string
	Region         enums.Region
	TotalQuantity  int
	DateCodeStatus enums.DateCodeStatus
	BestDateCode   string
	MeetsRequested bool
}

// Key identifies the aggregation bucket for a candidate.
type Key struct {
	Supplier string
	Region   enums.Region
}
