package enums

import "fmt"

// OutcomeStatus is the terminal state of one (part, supplier) submission.
type OutcomeStatus string

const (
	OutcomeSent        OutcomeStatus = "SENT"
	OutcomeFailed      OutcomeStatus = "FAILED"
	OutcomeOmitted     OutcomeStatus = "OMITTED"
	OutcomeNoSuppliers OutcomeStatus = "NO_SUPPLIERS"
	OutcomeSkipped     OutcomeStatus = "SKIPPED"
)

var validOutcomeStatuses = []OutcomeStatus{
	OutcomeSent,
	OutcomeFailed,
	OutcomeOmitted,
	OutcomeNoSuppliers,
	OutcomeSkipped,
}

// IsValid reports whether the value matches the canonical outcome enum.
func (s OutcomeStatus) IsValid() bool {
	for _, candidate := range validOutcomeStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOutcomeStatus converts the raw string to OutcomeStatus.
func ParseOutcomeStatus(value string) (OutcomeStatus, error) {
	for _, candidate := range validOutcomeStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outcome status %q", value)
}
