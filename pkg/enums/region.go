package enums

import "fmt"

// Region is the marketplace region a listing belongs to. AsiaOther is a
// separate purchasing channel and is never sourced by this engine.
type Region string

const (
	RegionAmericas  Region = "americas"
	RegionEurope    Region = "europe"
	RegionAsiaOther Region = "asia_other"
)

var validRegions = []Region{
	RegionAmericas,
	RegionEurope,
	RegionAsiaOther,
}

// SelectableRegions lists the regions the selector may pick suppliers from.
func SelectableRegions() []Region {
	return []Region{RegionAmericas, RegionEurope}
}

// Excluded reports whether suppliers in this region are out of scope.
func (r Region) Excluded() bool {
	return r == RegionAsiaOther
}

// IsValid reports whether the value matches the canonical region enum.
func (r Region) IsValid() bool {
	for _, candidate := range validRegions {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRegion converts the raw string to Region.
func ParseRegion(value string) (Region, error) {
	for _, candidate := range validRegions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid region %q", value)
}
