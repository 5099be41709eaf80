package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warden-bot/model"
	"warden-bot/moderation"
)

// Store is the sqlite-backed punishment ledger. It owns the append-only
// audit log, the active restriction set, and warning records, and is the
// only writer of any of them.
type Store struct {
	db *sqlx.DB
}

// New wraps an initialized ledger database.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only diagnostics.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// CommitAction assigns the action's per-guild monotonic id, appends the
// audit record, and applies the matching restriction or warning mutation in
// the same transaction. A crash leaves either both applied or neither.
func (s *Store) CommitAction(ctx context.Context, action model.ModerationAction, op moderation.CommitOp) (moderation.CommitResult, error) {
	var result moderation.CommitResult

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("failed to begin ledger transaction: %w", err)
	}
	defer tx.Rollback()

	id, err := nextActionID(ctx, tx, action.GuildID)
	if err != nil {
		return result, err
	}
	action.ActionID = id

	if err := appendAction(ctx, tx, action); err != nil {
		return result, err
	}

	switch op {
	case moderation.OpNone:
		// Audit record only.
	case moderation.OpCreateRestriction:
		kind, ok := action.Kind.RestrictionKind()
		if !ok {
			return result, fmt.Errorf("action kind %s does not create a restriction", action.Kind)
		}
		restriction := model.ActiveRestriction{
			UserID:    action.TargetID,
			GuildID:   action.GuildID,
			Kind:      kind,
			ExpiresAt: action.Timestamp + action.DurationSeconds,
			ActionID:  action.ActionID,
		}
		if err := insertRestriction(ctx, tx, restriction); err != nil {
			return result, err
		}
	case moderation.OpLiftRestriction:
		kind, ok := action.Kind.RestrictionKind()
		if !ok {
			return result, fmt.Errorf("action kind %s does not lift a restriction", action.Kind)
		}
		key := model.RestrictionKey{UserID: action.TargetID, GuildID: action.GuildID, Kind: kind}
		removed, err := deleteRestriction(ctx, tx, key)
		if err != nil {
			return result, err
		}
		result.Removed = removed
	case moderation.OpRecordWarning:
		warning := model.Warning{
			UserID:    action.TargetID,
			GuildID:   action.GuildID,
			IssuerID:  action.IssuerID,
			Reason:    action.Reason,
			Timestamp: action.Timestamp,
			Active:    true,
		}
		if err := insertWarning(ctx, tx, warning); err != nil {
			return result, err
		}
		count, err := activeWarningCountTx(ctx, tx, action.GuildID, action.TargetID)
		if err != nil {
			return result, err
		}
		result.ActiveWarnings = count
	case moderation.OpPardonWarnings:
		if err := pardonWarnings(ctx, tx, action.GuildID, action.TargetID); err != nil {
			return result, err
		}
	default:
		return result, fmt.Errorf("unknown commit op %d", op)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("failed to commit ledger transaction: %w", err)
	}

	result.Action = action
	return result, nil
}

// HasActiveRestriction reports whether a restriction exists for the key.
func (s *Store) HasActiveRestriction(ctx context.Context, key model.RestrictionKey) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM active_restrictions WHERE user_id = ? AND guild_id = ? AND kind = ?`
	err := s.db.GetContext(ctx, &count, query, key.UserID, key.GuildID, key.Kind)
	if err != nil {
		return false, fmt.Errorf("failed to check restriction for %s: %w", key, err)
	}
	return count > 0, nil
}

var _ moderation.Ledger = (*Store)(nil)
