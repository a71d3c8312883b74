package enums

import "fmt"

// OmitReason explains why a qualifying candidate was not contacted.
type OmitReason string

const (
	OmitBelowQuantity       OmitReason = "BELOW_QUANTITY"
	OmitOpportunityFiltered OmitReason = "OPPORTUNITY_FILTERED"
	OmitRegionExcluded      OmitReason = "REGION_EXCLUDED"
	OmitCapExceeded         OmitReason = "CAP_EXCEEDED"
)

var validOmitReasons = []OmitReason{
	OmitBelowQuantity,
	OmitOpportunityFiltered,
	OmitRegionExcluded,
	OmitCapExceeded,
}

// IsValid reports whether the value matches the canonical omit reason enum.
func (r OmitReason) IsValid() bool {
	for _, candidate := range validOmitReasons {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseOmitReason converts the raw string to OmitReason.
func ParseOmitReason(value string) (OmitReason, error) {
	for _, candidate := range validOmitReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid omit reason %q", value)
}
