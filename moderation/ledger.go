package moderation

import (
	"context"
	"time"

	"warden-bot/model"
)

// CommitOp selects the ledger mutation committed atomically with an audit
// append.
type CommitOp int

const (
	// OpNone appends the audit record only (kick, or a lifting kind with
	// nothing to lift).
	OpNone CommitOp = iota
	// OpCreateRestriction additionally inserts the active restriction row
	// (mute, ban). Conflicts with an existing row on the same key fail the
	// whole transaction with ErrRestrictionActive.
	OpCreateRestriction
	// OpLiftRestriction additionally deletes the restriction row (unmute,
	// unban). A missing row is not an error.
	OpLiftRestriction
	// OpRecordWarning additionally inserts a warning row (warn).
	OpRecordWarning
	// OpPardonWarnings additionally deactivates the subject's active
	// warnings (pardon).
	OpPardonWarnings
)

// CommitResult reports what a combined ledger commit did.
type CommitResult struct {
	Action model.ModerationAction
	// Removed is set for OpLiftRestriction when a restriction row was
	// actually present. False is a normal occurrence (a manual lift racing
	// the scheduler's sweep), not an error.
	Removed bool
	// ActiveWarnings is the subject's active warning count after an
	// OpRecordWarning commit.
	ActiveWarnings int
}

// Ledger is the persistent store owning all consistency invariants: the
// append-only audit log, the active restriction set, and warning records.
type Ledger interface {
	// CommitAction assigns the action's per-guild monotonic id, appends it
	// to the audit log, and applies op in the same durable transaction. A
	// crash leaves either both applied or neither.
	CommitAction(ctx context.Context, action model.ModerationAction, op CommitOp) (CommitResult, error)

	// HasActiveRestriction reports whether a restriction exists for key.
	HasActiveRestriction(ctx context.Context, key model.RestrictionKey) (bool, error)

	// ListExpired returns restrictions with expiry <= now, oldest first.
	ListExpired(ctx context.Context, now time.Time) ([]model.ActiveRestriction, error)

	ListActiveRestrictions(ctx context.Context, guildID string) ([]model.ActiveRestriction, error)
	ListWarnings(ctx context.Context, guildID, userID string) ([]model.Warning, error)
	ListAuditTrail(ctx context.Context, guildID, targetID string, limit int) ([]model.ModerationAction, error)
	ActiveWarningCount(ctx context.Context, guildID, userID string) (int, error)

	// ExpireWarningsOlderThan deactivates active warnings created before
	// cutoff and returns how many it flipped. Bulk and idempotent.
	ExpireWarningsOlderThan(ctx context.Context, guildID string, cutoff time.Time) (int, error)
}
