package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"warden-bot/model"
	"warden-bot/moderation"
)

// insertRestriction creates the active restriction row. A key that already
// carries a restriction fails the whole transaction with
// ErrRestrictionActive: no silent overwrite, so the true causing action is
// never lost.
func insertRestriction(ctx context.Context, tx *sqlx.Tx, r model.ActiveRestriction) error {
	query := `INSERT INTO active_restrictions (user_id, guild_id, kind, expires_at, action_id)
			  VALUES (:user_id, :guild_id, :kind, :expires_at, :action_id)`
	if _, err := tx.NamedExecContext(ctx, query, r); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%s: %w", r.Key(), moderation.ErrRestrictionActive)
		}
		return fmt.Errorf("failed to insert restriction %s: %w", r.Key(), err)
	}
	return nil
}

// deleteRestriction removes the restriction row. Idempotent: a missing row
// reports removed=false, which is expected when a manual lift races the
// scheduler's sweep.
func deleteRestriction(ctx context.Context, tx *sqlx.Tx, key model.RestrictionKey) (bool, error) {
	query := `DELETE FROM active_restrictions WHERE user_id = ? AND guild_id = ? AND kind = ?`
	res, err := tx.ExecContext(ctx, query, key.UserID, key.GuildID, key.Kind)
	if err != nil {
		return false, fmt.Errorf("failed to delete restriction %s: %w", key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for restriction %s: %w", key, err)
	}
	return affected > 0, nil
}

// ListExpired returns all restrictions whose expiry has passed, oldest
// first, so the most overdue are processed first under load.
func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]model.ActiveRestriction, error) {
	var restrictions []model.ActiveRestriction
	query := `SELECT * FROM active_restrictions WHERE expires_at <= ? ORDER BY expires_at ASC`
	if err := s.db.SelectContext(ctx, &restrictions, query, now.Unix()); err != nil {
		return nil, fmt.Errorf("failed to list expired restrictions: %w", err)
	}
	return restrictions, nil
}

// ListActiveRestrictions returns a guild's active restrictions ordered by
// expiry.
func (s *Store) ListActiveRestrictions(ctx context.Context, guildID string) ([]model.ActiveRestriction, error) {
	var restrictions []model.ActiveRestriction
	query := `SELECT * FROM active_restrictions WHERE guild_id = ? ORDER BY expires_at ASC`
	if err := s.db.SelectContext(ctx, &restrictions, query, guildID); err != nil {
		return nil, fmt.Errorf("failed to list active restrictions for guild %s: %w", guildID, err)
	}
	return restrictions, nil
}
