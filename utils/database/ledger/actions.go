package ledger

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"warden-bot/model"
)

// nextActionID increments and returns the guild's action counter inside the
// caller's transaction. sqlite serializes writing transactions, which makes
// the counter a monotonic per-guild sequence.
func nextActionID(ctx context.Context, tx *sqlx.Tx, guildID string) (int64, error) {
	query := `INSERT INTO guild_counters (guild_id, next_action_id) VALUES (?, 1)
			  ON CONFLICT(guild_id) DO UPDATE SET next_action_id = next_action_id + 1`
	if _, err := tx.ExecContext(ctx, query, guildID); err != nil {
		return 0, fmt.Errorf("failed to advance action counter for guild %s: %w", guildID, err)
	}

	var id int64
	if err := tx.GetContext(ctx, &id, `SELECT next_action_id FROM guild_counters WHERE guild_id = ?`, guildID); err != nil {
		return 0, fmt.Errorf("failed to read action counter for guild %s: %w", guildID, err)
	}
	return id, nil
}

func appendAction(ctx context.Context, tx *sqlx.Tx, action model.ModerationAction) error {
	query := `INSERT INTO moderation_actions (guild_id, action_id, issuer_id, target_id, kind, reason, duration_seconds, timestamp)
			  VALUES (:guild_id, :action_id, :issuer_id, :target_id, :kind, :reason, :duration_seconds, :timestamp)`
	if _, err := tx.NamedExecContext(ctx, query, action); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// ListAuditTrail returns a guild's most recent audit records, newest first,
// optionally filtered by target. limit <= 0 means no limit.
func (s *Store) ListAuditTrail(ctx context.Context, guildID, targetID string, limit int) ([]model.ModerationAction, error) {
	query := `SELECT * FROM moderation_actions WHERE guild_id = ?`
	args := []interface{}{guildID}

	if targetID != "" {
		query += ` AND target_id = ?`
		args = append(args, targetID)
	}
	query += ` ORDER BY action_id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var actions []model.ModerationAction
	if err := s.db.SelectContext(ctx, &actions, query, args...); err != nil {
		return nil, fmt.Errorf("failed to get audit trail for guild %s: %w", guildID, err)
	}
	return actions, nil
}
