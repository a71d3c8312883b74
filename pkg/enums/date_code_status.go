package enums

import "fmt"

// DateCodeStatus classifies the freshness signal parsed from a listing's
// raw date code.
type DateCodeStatus string

const (
	DateCodeFresh   DateCodeStatus = "fresh"
	DateCodeUnknown DateCodeStatus = "unknown"
	DateCodeOld     DateCodeStatus = "old"
)

var validDateCodeStatuses = []DateCodeStatus{
	DateCodeFresh,
	DateCodeUnknown,
	DateCodeOld,
}

// favorability orders statuses best-first: fresh dominates unknown
// dominates old.
var dateCodeFavorability = map[DateCodeStatus]int{
	DateCodeFresh:   0,
	DateCodeUnknown: 1,
	DateCodeOld:     2,
}

// BetterThan reports whether s is strictly more favorable than other.
func (s DateCodeStatus) BetterThan(other DateCodeStatus) bool {
	return dateCodeFavorability[s] < dateCodeFavorability[other]
}

// IsValid reports whether the value matches the canonical status enum.
func (s DateCodeStatus) IsValid() bool {
	for _, candidate := range validDateCodeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseDateCodeStatus converts the raw string to DateCodeStatus.
func ParseDateCodeStatus(value string) (DateCodeStatus, error) {
	for _, candidate := range validDateCodeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid date code status %q", value)
}
