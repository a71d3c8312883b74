// Package marketplace defines the contract this engine requires from the
// marketplace-interaction collaborator. How listings are fetched and
// requests are submitted (UI automation, API client) is the implementer's
// concern; the engine only sees these interfaces and typed failures.
package marketplace

import (
	"context"

	"github.com/angelmondragon/sourcing-engine/internal/listings"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/sourcing-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// EuropeOriginMessage is attached to submissions routed to European
// suppliers.
const EuropeOriginMessage = "Please confirm country of origin."

// SubmitRequest is one quote request to one supplier.
type SubmitRequest struct {
	Supplier   string
	Region     enums.Region
	PartNumber string
	Quantity   int
	Message    string
}

// SubmitResult carries supplier data observed during the submission flow.
// MinOrderValue is absent when the supplier does not publish one.
type SubmitResult struct {
	MinOrderValue decimal.NullDecimal
}

// Session is one worker's exclusive interaction resource. Sessions are
// never shared across workers; each individual submission is a sequential
// sub-procedure inside the session.
type Session interface {
	FetchListings(ctx context.Context, partNumber string) ([]listings.ListingRecord, error)
	MinOrderValue(ctx context.Context, supplier string, partNumber string) (decimal.NullDecimal, error)
	Submit(ctx context.Context, req SubmitRequest) (SubmitResult, error)
	Close(ctx context.Context) error
}

// Client opens authenticated sessions. An authentication failure must come
// back as a fatal error so the run aborts before any submissions go out.
type Client interface {
	OpenSession(ctx context.Context) (Session, error)
}

// MessageFor returns the note to attach for a supplier's region.
func MessageFor(region enums.Region) string {
	if region == enums.RegionEurope {
		return EuropeOriginMessage
	}
	return ""
}

// NewAuthError wraps an authentication or login failure. Fatal: the whole
// run aborts.
func NewAuthError(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "marketplace authentication failed")
}

// NewSubmissionError wraps a per-job interaction failure. Recorded as
// FAILED, run continues.
func NewSubmissionError(err error, supplier string) error {
	return pkgerrors.Wrap(pkgerrors.CodeSubmission, err, "submission to "+supplier+" failed")
}

// IsFatal reports whether the error must abort the entire run rather than
// fail a single job.
func IsFatal(err error) bool {
	return pkgerrors.IsFatal(err)
}
