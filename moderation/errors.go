package moderation

import (
	"errors"
	"fmt"
)

// The closed error taxonomy of the engine. Callers switch on these with
// errors.Is; they are the full set of expected outcomes of Execute.
var (
	// ErrNotAuthorized is a permission denial. Expected outcome, not an
	// operational error; the concrete denial reason travels in
	// NotAuthorizedError.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidRequest is structural misuse: self-target, missing or
	// non-positive duration, unknown action kind.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrRestrictionActive is a conflict on a restriction key. Non-fatal;
	// callers must lift the existing restriction before re-applying.
	ErrRestrictionActive = errors.New("restriction already active")

	// ErrExternalEffect means the gateway call failed or timed out. The
	// ledger was not touched, so the whole operation is safe to retry.
	ErrExternalEffect = errors.New("external effect failed")

	// ErrLedgerWrite means the external effect succeeded but the durable
	// record could not be committed after bounded retries. The one
	// condition requiring operator attention and manual reconciliation.
	ErrLedgerWrite = errors.New("ledger write failed")
)

// DenialReason identifies why CanModerate refused an action.
type DenialReason string

const (
	DenialTargetIsOwner         DenialReason = "TargetIsOwner"
	DenialEqualRank             DenialReason = "EqualRank"
	DenialLowerRank             DenialReason = "LowerRank"
	DenialMissingBasePermission DenialReason = "MissingBasePermission"
)

// NotAuthorizedError carries the resolver's denial reason. The engine never
// formats user-facing text; callers map the reason to their own message.
type NotAuthorizedError struct {
	Reason DenialReason
}

func (e *NotAuthorizedError) Error() string {
	return fmt.Sprintf("not authorized: %s", e.Reason)
}

func (e *NotAuthorizedError) Unwrap() error {
	return ErrNotAuthorized
}

// InvalidRequestError describes which structural precondition failed.
type InvalidRequestError struct {
	Detail string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %s", e.Detail)
}

func (e *InvalidRequestError) Unwrap() error {
	return ErrInvalidRequest
}
