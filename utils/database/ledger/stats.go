package ledger

import (
	"context"
	"fmt"
	"time"
)

// IssuerActionStats returns the action count per issuer within a guild
// since the given time, most active issuers first.
func (s *Store) IssuerActionStats(ctx context.Context, guildID string, since time.Time) (map[string]int, error) {
	query := `SELECT issuer_id, COUNT(*) as count FROM moderation_actions
			  WHERE guild_id = ? AND timestamp >= ? GROUP BY issuer_id ORDER BY count DESC`
	rows, err := s.db.QueryContext(ctx, query, guildID, since.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to get issuer action stats for guild %s: %w", guildID, err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var issuerID string
		var count int
		if err := rows.Scan(&issuerID, &count); err != nil {
			return nil, fmt.Errorf("failed to scan issuer stats row: %w", err)
		}
		stats[issuerID] = count
	}
	return stats, rows.Err()
}

// TotalActionCount returns the total number of actions in a guild since the
// given time.
func (s *Store) TotalActionCount(ctx context.Context, guildID string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM moderation_actions WHERE guild_id = ? AND timestamp >= ?`
	if err := s.db.GetContext(ctx, &count, query, guildID, since.Unix()); err != nil {
		return 0, fmt.Errorf("failed to get total action count for guild %s: %w", guildID, err)
	}
	return count, nil
}
