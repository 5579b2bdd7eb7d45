package domain

import (
	"errors"
)

// Error taxonomy surfaced by the business layer. Handlers map these onto
// HTTP status codes; everything else is a 500.
var (
	// ErrNotFound signals an unknown driver/package/subscription/booking id.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a business-rule violation, e.g. an active
	// subscription blocking a new purchase or a package that is not a valid
	// upgrade/downgrade target.
	ErrConflict = errors.New("conflict")

	// ErrInvalidState signals unmet preconditions, e.g. a downgrade with too
	// many unused swaps.
	ErrInvalidState = errors.New("invalid state")

	// ErrSecurityViolation signals a signature mismatch on a payment
	// callback. Treated as potential forgery and rejected outright.
	ErrSecurityViolation = errors.New("security violation")

	// ErrIntegration signals an unreachable payment provider or a malformed
	// provider response. No automatic retry; the caller may resubmit.
	ErrIntegration = errors.New("integration failure")
)
