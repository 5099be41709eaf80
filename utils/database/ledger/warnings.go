package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"warden-bot/model"
)

func insertWarning(ctx context.Context, tx *sqlx.Tx, w model.Warning) error {
	query := `INSERT INTO warnings (user_id, guild_id, issuer_id, reason, timestamp, active)
			  VALUES (:user_id, :guild_id, :issuer_id, :reason, :timestamp, :active)`
	if _, err := tx.NamedExecContext(ctx, query, w); err != nil {
		return fmt.Errorf("failed to insert warning for user %s: %w", w.UserID, err)
	}
	return nil
}

// pardonWarnings deactivates the subject's active warnings. Rows stay in
// place; pardons are forward-looking only.
func pardonWarnings(ctx context.Context, tx *sqlx.Tx, guildID, userID string) error {
	query := `UPDATE warnings SET active = 0 WHERE guild_id = ? AND user_id = ? AND active = 1`
	if _, err := tx.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("failed to pardon warnings for user %s: %w", userID, err)
	}
	return nil
}

func activeWarningCountTx(ctx context.Context, tx *sqlx.Tx, guildID, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ? AND active = 1`
	if err := tx.GetContext(ctx, &count, query, guildID, userID); err != nil {
		return 0, fmt.Errorf("failed to count active warnings for user %s: %w", userID, err)
	}
	return count, nil
}

// ActiveWarningCount returns the subject's number of active warnings.
func (s *Store) ActiveWarningCount(ctx context.Context, guildID, userID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM warnings WHERE guild_id = ? AND user_id = ? AND active = 1`
	if err := s.db.GetContext(ctx, &count, query, guildID, userID); err != nil {
		return 0, fmt.Errorf("failed to count active warnings for user %s: %w", userID, err)
	}
	return count, nil
}

// ListWarnings returns the subject's warnings, newest first, active and
// inactive alike.
func (s *Store) ListWarnings(ctx context.Context, guildID, userID string) ([]model.Warning, error) {
	var warnings []model.Warning
	query := `SELECT * FROM warnings WHERE guild_id = ? AND user_id = ? ORDER BY timestamp DESC`
	if err := s.db.SelectContext(ctx, &warnings, query, guildID, userID); err != nil {
		return nil, fmt.Errorf("failed to list warnings for user %s in guild %s: %w", userID, guildID, err)
	}
	return warnings, nil
}

// ExpireWarningsOlderThan deactivates active warnings created before cutoff
// and returns how many rows it flipped. Bulk and idempotent; needs no
// per-row locking.
func (s *Store) ExpireWarningsOlderThan(ctx context.Context, guildID string, cutoff time.Time) (int, error) {
	query := `UPDATE warnings SET active = 0 WHERE guild_id = ? AND active = 1 AND timestamp < ?`
	res, err := s.db.ExecContext(ctx, query, guildID, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to expire warnings for guild %s: %w", guildID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check expired warning count for guild %s: %w", guildID, err)
	}
	return int(affected), nil
}
