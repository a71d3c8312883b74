package batch

import (
	"time"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/internal/requests"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	"github.com/shopspring/decimal"
)

// Job is one (part, selected supplier) pair flattened onto the run queue.
type Job struct {
	Part           requests.PartRequest
	Candidate      listings.SupplierCandidate
	AdjustedQty    int
	MinOrderValue  decimal.NullDecimal
	EstimatedValue decimal.NullDecimal

	// snapshot of the part's selection context, carried into the outcome
	QualifyingTotal    int
	QualifyingAmericas int
	QualifyingEurope   int
	SelectedCount      int
}

// Outcome is the terminal record of one job, or of a part that never
// produced jobs (NO_SUPPLIERS, build failure).
type Outcome struct {
	LineNumber       int
	CustomerPartCode string
	PartNumber       string
	QtyRequested     int
	QtySent          *int
	Supplier         string
	Region           enums.Region
	SupplierQty      *int
	MinOrderValue    decimal.NullDecimal
	EstimatedValue   decimal.NullDecimal

	QualifyingTotal    int
	QualifyingAmericas int
	QualifyingEurope   int
	SelectedCount      int

	Status      enums.OutcomeStatus
	Reason      string
	ErrorDetail string
	WorkerID    int
	Duration    time.Duration
	Timestamp   time.Time
}
